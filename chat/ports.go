package chat

import (
	"context"

	"github.com/xiaoyuanzhu-com/webhook-chat/db"
	"github.com/xiaoyuanzhu-com/webhook-chat/notifications"
	"github.com/xiaoyuanzhu-com/webhook-chat/webhook"
)

// Store is the persistence surface the controller needs. *db.DB satisfies it.
type Store interface {
	CreateSession(title string) (*db.ChatSession, error)
	ListSessions() ([]db.ChatSession, error)
	GetSession(id string) (*db.ChatSession, error)
	RenameSession(id, title string) error
	DeleteSession(id string) error
	ListMessages(sessionID string) ([]db.ChatMessage, error)
	SaveMessage(sessionID string, m db.ChatMessage) error
}

// Dispatcher delivers messages to the webhook. *webhook.Client satisfies it.
type Dispatcher interface {
	Send(ctx context.Context, url string, payload webhook.Payload) (webhook.Outcome, error)
	TestConnection(ctx context.Context, url string) (webhook.ConnectionResult, error)
}

// Notifier publishes state changes to connected clients.
// *notifications.Service satisfies it.
type Notifier interface {
	NotifySessionsChanged(sessionID string, operation string)
	NotifyMessageAppended(sessionID string, message any)
	NotifyMessageRemoved(sessionID string, messageID string)
	NotifyLoadingChanged(sessionID string, loading bool)
	NotifyToast(sessionID string, toast notifications.Toast)
}

// DispatcherFactory builds a dispatcher for the given options
type DispatcherFactory func(opts webhook.Options) Dispatcher

// NewWebhookDispatcher is the default factory backed by webhook.Client
func NewWebhookDispatcher(opts webhook.Options) Dispatcher {
	return webhook.NewClient(opts)
}
