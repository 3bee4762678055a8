package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
	"github.com/Marga-Ghale/ora-chat-backend/internal/models"
	"github.com/Marga-Ghale/ora-chat-backend/internal/presence"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
	"github.com/Marga-Ghale/ora-chat-backend/internal/service"
)

// OnlineChecker answers whether a user currently holds a connection.
type OnlineChecker interface {
	IsOnline(user presence.UserID) bool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Group   *GroupHandler
	Message *MessageHandler
	Admin   *AdminHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, online OnlineChecker) *Handlers {
	return &Handlers{
		Auth:    &AuthHandler{authService: services.Auth},
		User:    &UserHandler{userService: services.User, online: online},
		Group:   &GroupHandler{groupService: services.Group, invitationService: services.Invitation},
		Message: &MessageHandler{messageService: services.Message},
		Admin:   &AdminHandler{adminService: services.Admin, online: online},
	}
}

// handleServiceError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an infrastructure fault and gets a generic 500.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, membership.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// uuidParam reads a path parameter that must be a UUID, writing 400 otherwise.
func uuidParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return "", false
	}
	return id.String(), true
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User, online OnlineChecker) models.UserResponse {
	resp := models.UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Surname:           u.Surname,
		Username:          u.Username,
		Email:             u.Email,
		DisplayName:       u.DisplayName,
		ProfilePictureURL: u.ProfilePictureURL,
		IsAdmin:           u.IsAdmin,
		CreatedAt:         u.CreatedAt,
	}
	if online != nil {
		resp.IsOnline = online.IsOnline(presence.UserID(u.ID))
	}
	return resp
}

func toUserResponseList(users []*repository.User, online OnlineChecker) []models.UserResponse {
	response := make([]models.UserResponse, len(users))
	for i, u := range users {
		response[i] = toUserResponse(u, online)
	}
	return response
}
