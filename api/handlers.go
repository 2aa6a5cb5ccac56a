package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
	"github.com/xiaoyuanzhu-com/webhook-chat/log"
	"github.com/xiaoyuanzhu-com/webhook-chat/server"
)

var apiLogger = log.GetLogger("Api")

// Handlers holds references to server components
type Handlers struct {
	server *server.Server
}

// NewHandlers creates a new Handlers instance with server reference
func NewHandlers(srv *server.Server) *Handlers {
	return &Handlers{server: srv}
}

// respondChatError maps chat precondition errors to HTTP responses.
// Anything else is logged and reported as fallback.
func respondChatError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, chat.ErrMissingWebhookURL):
		RespondWebhookNotConfigured(c, "Please enter an n8n webhook URL to continue")
	case errors.Is(err, chat.ErrEmptyMessage):
		RespondValidationError(c, "Message content is required", []ErrorDetail{
			{Field: "content", Message: "must not be empty"},
		})
	case errors.Is(err, chat.ErrInvalidTitle):
		RespondValidationError(c, "Title is required", []ErrorDetail{
			{Field: "title", Message: "must not be empty"},
		})
	case errors.Is(err, chat.ErrSessionNotFound):
		RespondNotFound(c, "Session not found")
	case errors.Is(err, chat.ErrLastSession):
		RespondConflict(c, "You must have at least one chat session")
	case errors.Is(err, chat.ErrSendInProgress):
		RespondConflict(c, "A message is already being sent")
	default:
		apiLogger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(fallback)
		RespondInternalError(c, fallback)
	}
}
