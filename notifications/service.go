package notifications

import (
	"sync"
	"time"
)

// EventType represents the type of notification event
type EventType string

const (
	EventConnected       EventType = "connected"
	EventSessionsChanged EventType = "sessions-changed"
	EventMessageAppended EventType = "message-appended"
	EventMessageRemoved  EventType = "message-removed"
	EventLoadingChanged  EventType = "loading-changed"
	EventToast           EventType = "toast"
)

// ToastVariant mirrors the UI toast styles
type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastDestructive ToastVariant = "destructive"
)

// Toast is a transient user-facing notification
type Toast struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Variant     ToastVariant `json:"variant"`
}

// Event represents a notification event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	SessionID string    `json:"sessionId,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Service manages SSE subscriptions and event broadcasting
type Service struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	closed      bool
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe creates a new subscription channel
// Returns the event channel and an unsubscribe function
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Only close if the channel is still in subscribers map
		if _, exists := s.subscribers[ch]; exists {
			delete(s.subscribers, ch)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Notify broadcasts an event to all subscribers
func (s *Service) Notify(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// NotifySessionsChanged sends a sessions-changed event
func (s *Service) NotifySessionsChanged(sessionID string, operation string) {
	s.Notify(Event{
		Type:      EventSessionsChanged,
		SessionID: sessionID,
		Data: map[string]interface{}{
			"operation": operation,
		},
	})
}

// NotifyMessageAppended sends a message-appended event
func (s *Service) NotifyMessageAppended(sessionID string, message any) {
	s.Notify(Event{
		Type:      EventMessageAppended,
		SessionID: sessionID,
		Data:      message,
	})
}

// NotifyMessageRemoved sends a message-removed event
func (s *Service) NotifyMessageRemoved(sessionID string, messageID string) {
	s.Notify(Event{
		Type:      EventMessageRemoved,
		SessionID: sessionID,
		Data: map[string]interface{}{
			"id": messageID,
		},
	})
}

// NotifyLoadingChanged sends a loading-changed event
func (s *Service) NotifyLoadingChanged(sessionID string, loading bool) {
	s.Notify(Event{
		Type:      EventLoadingChanged,
		SessionID: sessionID,
		Data: map[string]interface{}{
			"loading": loading,
		},
	})
}

// NotifyToast sends a toast event
func (s *Service) NotifyToast(sessionID string, toast Toast) {
	if toast.Variant == "" {
		toast.Variant = ToastDefault
	}
	s.Notify(Event{
		Type:      EventToast,
		SessionID: sessionID,
		Data:      toast,
	})
}

// Shutdown closes all subscriber channels; later subscriptions are closed immediately
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[chan Event]struct{})
}

// SubscriberCount returns the number of active subscribers
func (s *Service) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
