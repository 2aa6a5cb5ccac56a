package chat

import (
	"time"

	"github.com/xiaoyuanzhu-com/webhook-chat/db"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderUser Sender = db.SenderUser
	SenderN8N  Sender = db.SenderN8N
)

// Kind tags the in-memory message variants. Placeholders are removed by
// identifier and never persisted, so user text that happens to match the
// placeholder text is never mistaken for one.
type Kind string

const (
	KindUser        Kind = "user"
	KindPlaceholder Kind = "placeholder"
	KindReply       Kind = "reply"
)

// PlaceholderText is shown while waiting for the webhook reply
const PlaceholderText = "🔄 Sending to n8n workflow..."

// Message is one entry of a conversation
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// Persistent reports whether the message belongs in the database
func (m Message) Persistent() bool {
	return m.Kind != KindPlaceholder
}

// Session is one conversation thread
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func sessionFromRecord(r db.ChatSession) Session {
	return Session{
		ID:        r.ID,
		Title:     r.Title,
		CreatedAt: time.UnixMilli(r.CreatedAt),
		UpdatedAt: time.UnixMilli(r.UpdatedAt),
	}
}

func messageFromRecord(r db.ChatMessage) Message {
	kind := KindReply
	if r.Sender == db.SenderUser {
		kind = KindUser
	}
	return Message{
		ID:        r.ID,
		SessionID: r.SessionID,
		Content:   r.Content,
		Sender:    Sender(r.Sender),
		Kind:      kind,
		Timestamp: time.UnixMilli(r.Timestamp),
	}
}

func recordFromMessage(m Message) db.ChatMessage {
	return db.ChatMessage{
		ID:        m.ID,
		SessionID: m.SessionID,
		Content:   m.Content,
		Sender:    string(m.Sender),
		Timestamp: m.Timestamp.UnixMilli(),
	}
}
