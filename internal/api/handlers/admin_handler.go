package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-chat-backend/internal/service"
)

// ============================================
// Admin Handler
// ============================================

// AdminHandler serves the global admin views. Routes are guarded by middleware.AdminOnly.
type AdminHandler struct {
	adminService service.AdminService
	online       OnlineChecker
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponseList(users, h.online))
}

func (h *AdminHandler) ListMessages(c *gin.Context) {
	messages, err := h.adminService.ListMessages(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	logs, err := h.adminService.ListAuditLogs(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *AdminHandler) OnlineUsers(c *gin.Context) {
	users := h.adminService.OnlineUsers()
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}
