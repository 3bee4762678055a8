package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-chat-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-chat-backend/internal/models"
	"github.com/Marga-Ghale/ora-chat-backend/internal/service"
)

// ============================================
// Group Handler
// ============================================

type GroupHandler struct {
	groupService      service.GroupService
	invitationService service.InvitationService
}

func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) Get(c *gin.Context) {
	if _, ok := middleware.RequireUserID(c); !ok {
		return
	}
	groupID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	group, err := h.groupService.Get(c.Request.Context(), groupID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// ============================================
// Invitations
// ============================================

func (h *GroupHandler) Invite(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.invitationService.Invite(c.Request.Context(), userID, req.GroupID, req.TargetUserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// Respond accepts by default; ?accept=false declines.
func (h *GroupHandler) Respond(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	accept := true
	if raw := c.Query("accept"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "accept must be true or false"})
			return
		}
		accept = parsed
	}

	m, err := h.invitationService.Respond(c.Request.Context(), userID, groupID, accept)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *GroupHandler) Decline(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	m, err := h.invitationService.Decline(c.Request.Context(), userID, groupID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *GroupHandler) CancelInvite(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	var req models.CancelInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.invitationService.CancelInvite(c.Request.Context(), userID, groupID, req.TargetUserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *GroupHandler) History(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	sentByMe := c.Query("sentByMe") == "true"

	invitations, err := h.invitationService.History(c.Request.Context(), userID, sentByMe)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitations)
}
