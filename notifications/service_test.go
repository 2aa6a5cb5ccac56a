package notifications

import (
	"testing"
	"time"
)

func TestNotify_DeliversToSubscribers(t *testing.T) {
	s := NewService()

	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.NotifyLoadingChanged("chat-1", true)

	select {
	case event := <-events:
		if event.Type != EventLoadingChanged {
			t.Errorf("expected event type %s, got %s", EventLoadingChanged, event.Type)
		}
		if event.SessionID != "chat-1" {
			t.Errorf("expected session chat-1, got %s", event.SessionID)
		}
		if event.Timestamp == 0 {
			t.Error("expected timestamp to be set")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
}

func TestNotifyToast_DefaultsVariant(t *testing.T) {
	s := NewService()
	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.NotifyToast("", Toast{Title: "Success", Description: "Chat deleted successfully"})

	event := <-events
	toast, ok := event.Data.(Toast)
	if !ok {
		t.Fatalf("expected Toast payload, got %T", event.Data)
	}
	if toast.Variant != ToastDefault {
		t.Errorf("expected default variant, got %q", toast.Variant)
	}
}

func TestUnsubscribe_Twice(t *testing.T) {
	s := NewService()
	_, unsubscribe := s.Subscribe()

	unsubscribe()
	unsubscribe()

	if s.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", s.SubscriberCount())
	}
}

func TestNotify_FullChannelDoesNotBlock(t *testing.T) {
	s := NewService()
	_, unsubscribe := s.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.NotifySessionsChanged("chat-1", "updated")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full subscriber")
	}
}

func TestShutdown_ClosesSubscribers(t *testing.T) {
	s := NewService()
	events, unsubscribe := s.Subscribe()

	s.Shutdown()
	unsubscribe()

	if _, ok := <-events; ok {
		t.Fatal("expected channel to be closed")
	}

	late, _ := s.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("expected subscription after shutdown to be closed")
	}
}
