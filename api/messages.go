package api

import (
	"github.com/gin-gonic/gin"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
	"github.com/xiaoyuanzhu-com/webhook-chat/render"
	"github.com/xiaoyuanzhu-com/webhook-chat/webhook"
)

// messageView adds rendered HTML to webhook replies
type messageView struct {
	chat.Message
	HTML string `json:"html,omitempty"`
}

func newMessageView(m chat.Message) messageView {
	v := messageView{Message: m}
	if m.Kind == chat.KindReply {
		v.HTML = render.MustHTML(m.Content)
	}
	return v
}

func newMessageViews(messages []chat.Message) []messageView {
	views := make([]messageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, newMessageView(m))
	}
	return views
}

type messagesResponse struct {
	Messages []messageView `json:"messages"`
	Loading  bool          `json:"loading"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type sendMessageResponse struct {
	UserMessage messageView      `json:"userMessage"`
	Reply       messageView      `json:"reply"`
	Outcome     *webhook.Outcome `json:"outcome,omitempty"`
	Messages    []messageView    `json:"messages"`
}

// ListMessages handles GET /api/sessions/:id/messages
func (h *Handlers) ListMessages(c *gin.Context) {
	id := c.Param("id")
	messages, err := h.server.Chat().Messages(c.Request.Context(), id)
	if err != nil {
		respondChatError(c, err, "Failed to load chat messages")
		return
	}

	RespondData(c, messagesResponse{
		Messages: newMessageViews(messages),
		Loading:  h.server.Chat().Loading(id),
	})
}

// SendMessage handles POST /api/sessions/:id/messages.
// It blocks until the webhook exchange settles.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return
	}

	result, err := h.server.Chat().SendUserMessage(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		respondChatError(c, err, "Failed to send message")
		return
	}

	RespondData(c, sendMessageResponse{
		UserMessage: newMessageView(result.UserMessage),
		Reply:       newMessageView(result.Reply),
		Outcome:     result.Outcome,
		Messages:    newMessageViews(result.Messages),
	})
}
