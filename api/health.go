package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /api/health
func (h *Handlers) Health(c *gin.Context) {
	count, err := h.server.DB().CountSessions()
	if err != nil {
		apiLogger.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"sessions":          count,
		"webhookConfigured": h.server.Chat().Webhook().URL != "",
	})
}
