package db

import (
	"time"
)

// Sender values stored in chat_messages.sender
const (
	SenderUser = "user"
	SenderN8N  = "n8n"
)

// ChatSession represents a conversation thread record
type ChatSession struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ChatMessage represents a persisted chat message record
type ChatMessage struct {
	ID        string `json:"id"`
	SessionID string `json:"chatSessionId"`
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

// Setting represents a settings record
type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// scanChatSession scans a row into a ChatSession
func scanChatSession(row interface{ Scan(...any) error }) (ChatSession, error) {
	var s ChatSession
	err := row.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// scanChatMessage scans a row into a ChatMessage
func scanChatMessage(row interface{ Scan(...any) error }) (ChatMessage, error) {
	var m ChatMessage
	err := row.Scan(&m.ID, &m.SessionID, &m.Content, &m.Sender, &m.Timestamp)
	return m, err
}

// NowMs returns the current time as Unix milliseconds (int64)
func NowMs() int64 {
	return time.Now().UnixMilli()
}
