package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatnotify/internal/dispatch"
	notificationsmodels "chatnotify/internal/models/notifications"
)

// defaultHistoryLimit applies when the limit query parameter is absent,
// non-numeric, zero, or negative.
const defaultHistoryLimit = 50

type HistoryHandler struct {
	history dispatch.HistoryStore
	logger  *zap.SugaredLogger
}

func NewHistoryHandler(history dispatch.HistoryStore, logger *zap.SugaredLogger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		logger:  logger,
	}
}

// ListNotifications handles GET /notifications/:userId?limit=N.
func (h *HistoryHandler) ListNotifications(c *gin.Context) {
	userID := c.Param("userId")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.history.ListByReceiver(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Errorw("failed to fetch notification history",
			"request_id", c.GetString("request_id"),
			"user_id", userID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch notifications"})
		return
	}

	if records == nil {
		records = []notificationsmodels.HistoryRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": records,
		"count":         len(records),
	})
}
