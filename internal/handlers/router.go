package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatnotify/internal/middleware"
)

// NewRouter assembles the gin engine with middleware, routes, and the
// unmatched-route fallback.
func NewRouter(logger *zap.SugaredLogger, notifications *NotificationsHandler, history *HistoryHandler, health *HealthHandler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.POST("/send-notification", notifications.SendNotification)
	router.GET("/notifications/:userId", history.ListNotifications)
	router.GET("/health", health.Health)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
	})

	return router
}
