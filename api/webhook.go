package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
	"github.com/xiaoyuanzhu-com/webhook-chat/webhook"
)

type webhookResponse struct {
	URL             string `json:"url"`
	IgnoreSSLErrors bool   `json:"ignoreSslErrors"`
	Configured      bool   `json:"configured"`
	TimeoutMs       int64  `json:"timeoutMs"`
}

type updateWebhookRequest struct {
	URL             string `json:"url"`
	IgnoreSSLErrors bool   `json:"ignoreSslErrors"`
}

type testWebhookRequest struct {
	URL string `json:"url"`
}

func newWebhookResponse(s chat.WebhookSettings) webhookResponse {
	return webhookResponse{
		URL:             s.URL,
		IgnoreSSLErrors: s.IgnoreSSLErrors,
		Configured:      s.URL != "",
		TimeoutMs:       s.Timeout.Milliseconds(),
	}
}

// GetWebhook handles GET /api/webhook
func (h *Handlers) GetWebhook(c *gin.Context) {
	RespondData(c, newWebhookResponse(h.server.Chat().Webhook()))
}

// UpdateWebhook handles PUT /api/webhook
func (h *Handlers) UpdateWebhook(c *gin.Context) {
	var req updateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return
	}

	settings := h.server.Chat().SetWebhook(req.URL, req.IgnoreSSLErrors)
	RespondData(c, newWebhookResponse(settings))
}

// TestWebhook handles POST /api/webhook/test.
// An optional url in the body overrides the configured one.
func (h *Handlers) TestWebhook(c *gin.Context) {
	var req testWebhookRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondBadRequest(c, "Invalid request body")
			return
		}
	}

	result, err := h.server.Chat().TestConnection(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, chat.ErrMissingWebhookURL) || errors.Is(err, webhook.ErrMissingURL) {
			respondChatError(c, chat.ErrMissingWebhookURL, "Failed to test connection")
			return
		}
		RespondBadRequest(c, "Invalid webhook URL: "+err.Error())
		return
	}
	RespondData(c, result)
}
