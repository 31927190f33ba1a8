package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SystemHandler serves the welcome and health endpoints
type SystemHandler struct {
	db     HealthChecker
	logger *logrus.Logger
	now    func() time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db HealthChecker, logger *logrus.Logger) *SystemHandler {
	return &SystemHandler{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Welcome greets API clients
func (h *SystemHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponseDTO{Message: "Welcome to Ideas Jar API"})
}

// Health reports service and database health.
// An unreachable database degrades the status but still answers 200.
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.db.Health(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("ヘルスチェックに失敗")
		c.JSON(http.StatusOK, HealthResponseDTO{
			Status:    "unhealthy",
			Timestamp: h.now(),
			Database:  "disconnected",
			Error:     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponseDTO{
		Status:    "healthy",
		Timestamp: h.now(),
		Database:  "connected",
	})
}
