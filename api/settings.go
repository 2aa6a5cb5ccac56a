package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiaoyuanzhu-com/webhook-chat/db"
	"github.com/xiaoyuanzhu-com/webhook-chat/log"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// GetSettings handles GET /api/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.server.DB().GetAllSettings()
	if err != nil {
		apiLogger.Error().Err(err).Msg("failed to get settings")
		RespondInternalError(c, "Failed to get settings")
		return
	}
	RespondData(c, settings)
}

// UpdateSettings handles PUT /api/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return
	}

	level, hasLevel := updates[db.SettingLogLevel]
	if hasLevel {
		level = strings.ToLower(strings.TrimSpace(level))
		if !validLogLevels[level] {
			RespondValidationError(c, "Invalid settings", []ErrorDetail{
				{Field: db.SettingLogLevel, Message: "must be one of debug, info, warn, error"},
			})
			return
		}
		updates[db.SettingLogLevel] = level
	}

	if err := h.server.DB().UpdateSettings(updates); err != nil {
		apiLogger.Error().Err(err).Msg("failed to update settings")
		RespondInternalError(c, "Failed to update settings")
		return
	}

	if hasLevel {
		log.SetLevel(level)
		apiLogger.Info().Str("level", level).Msg("log level updated")
	}

	// Return updated settings
	settings, err := h.server.DB().GetAllSettings()
	if err != nil {
		RespondNoContent(c)
		return
	}
	RespondData(c, settings)
}
