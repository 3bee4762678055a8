package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-chat-backend/internal/models"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionStats reports live websocket numbers.
type ConnectionStats interface {
	GetConnectedClientsCount() int
	GetOnlineUsers() []string
}

// ============================================
// Health Handler
// ============================================

type HealthHandler struct {
	database Pinger
	cache    Pinger
	stats    ConnectionStats
}

// NewHealthHandler builds the health check. cache may be nil when Redis is not configured.
func NewHealthHandler(database, cache Pinger, stats ConnectionStats) *HealthHandler {
	return &HealthHandler{database: database, cache: cache, stats: stats}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := models.HealthResponse{
		Status:           "healthy",
		Database:         "up",
		Cache:            "disabled",
		ConnectedClients: h.stats.GetConnectedClientsCount(),
		OnlineUsers:      len(h.stats.GetOnlineUsers()),
	}

	if h.database != nil {
		if err := h.database.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Database = "down"
		}
	}
	if h.cache != nil {
		resp.Cache = "up"
		if err := h.cache.Ping(ctx); err != nil {
			resp.Cache = "down"
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
