package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports process health. The firebase flag reflects whether
// client initialization succeeded at startup; no live probe runs per call.
type HealthHandler struct {
	firebaseReady bool
}

func NewHealthHandler(firebaseReady bool) *HealthHandler {
	return &HealthHandler{firebaseReady: firebaseReady}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"firebase":  h.firebaseReady,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
