package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatnotify/internal/dispatch"
	sendmodels "chatnotify/internal/models/send_notification"
)

type NotificationsHandler struct {
	dispatcher *dispatch.Dispatcher
	logger     *zap.SugaredLogger
}

func NewNotificationsHandler(dispatcher *dispatch.Dispatcher, logger *zap.SugaredLogger) *NotificationsHandler {
	return &NotificationsHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SendNotification handles POST /send-notification.
func (h *NotificationsHandler) SendNotification(c *gin.Context) {
	var req sendmodels.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, sendmodels.ErrorResponse{Success: false, Error: "Invalid request body"})
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		status := statusForDispatchError(err)
		if status == http.StatusInternalServerError {
			h.logger.Errorw("notification dispatch failed",
				"request_id", c.GetString("request_id"),
				"receiver_id", req.ReceiverID,
				"error", err,
			)
		}
		c.JSON(status, sendmodels.ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, sendmodels.Response{
		Success:   true,
		MessageID: result.MessageID,
		Message:   "Notification sent successfully",
	})
}

func statusForDispatchError(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrRecipientUnknown), errors.Is(err, dispatch.ErrTokenUnavailable):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrTokenExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
