package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	// API group
	api := r.Group("/api")

	api.GET("/health", h.Health)

	// Session routes - static routes first
	api.GET("/sessions", h.ListSessions)
	api.POST("/sessions", h.CreateSession)
	api.POST("/sessions/bootstrap", h.BootstrapSession)
	api.GET("/sessions/:id", h.GetSession)
	api.PATCH("/sessions/:id", h.RenameSession)
	api.DELETE("/sessions/:id", h.DeleteSession)
	api.GET("/sessions/:id/export", h.ExportSession)

	// Message routes
	api.GET("/sessions/:id/messages", h.ListMessages)
	api.POST("/sessions/:id/messages", h.SendMessage)

	// Webhook configuration
	api.GET("/webhook", h.GetWebhook)
	api.PUT("/webhook", h.UpdateWebhook)
	api.POST("/webhook/test", h.TestWebhook)

	// Notifications (SSE)
	api.GET("/notifications/stream", h.NotificationStream)

	// Settings
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)
}
