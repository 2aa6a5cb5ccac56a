package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiaoyuanzhu-com/webhook-chat/db"
	"github.com/xiaoyuanzhu-com/webhook-chat/notifications"
	"github.com/xiaoyuanzhu-com/webhook-chat/webhook"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]db.ChatSession
	messages map[string][]db.ChatMessage
	clock    int64
	saveErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: make(map[string]db.ChatSession),
		messages: make(map[string][]db.ChatMessage),
	}
}

func (s *memoryStore) tick() int64 {
	s.clock++
	return s.clock
}

func (s *memoryStore) CreateSession(title string) (*db.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	r := db.ChatSession{ID: uuid.New().String(), Title: title, CreatedAt: now, UpdatedAt: now}
	s.sessions[r.ID] = r
	return &r, nil
}

func (s *memoryStore) ListSessions() ([]db.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]db.ChatSession, 0, len(s.sessions))
	for _, r := range s.sessions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out, nil
}

func (s *memoryStore) GetSession(id string) (*db.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.sessions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

func (s *memoryStore) RenameSession(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.sessions[id]
	if !ok {
		return db.ErrNotFound
	}
	r.Title = title
	r.UpdatedAt = s.tick()
	s.sessions[id] = r
	return nil
}

func (s *memoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.sessions, id)
	delete(s.messages, id)
	return nil
}

func (s *memoryStore) ListMessages(sessionID string) ([]db.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]db.ChatMessage(nil), s.messages[sessionID]...), nil
}

func (s *memoryStore) SaveMessage(sessionID string, m db.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	r, ok := s.sessions[sessionID]
	if !ok {
		return db.ErrNotFound
	}
	m.SessionID = sessionID
	s.messages[sessionID] = append(s.messages[sessionID], m)
	r.UpdatedAt = s.tick()
	s.sessions[sessionID] = r
	return nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	outcome  webhook.Outcome
	err      error
	panicVal any
	block    chan struct{}
	calls    []webhook.Payload
	onSend   func()
}

func (d *fakeDispatcher) Send(ctx context.Context, url string, payload webhook.Payload) (webhook.Outcome, error) {
	d.mu.Lock()
	d.calls = append(d.calls, payload)
	onSend := d.onSend
	d.mu.Unlock()

	if onSend != nil {
		onSend()
	}
	if d.block != nil {
		<-d.block
	}
	if d.panicVal != nil {
		panic(d.panicVal)
	}
	return d.outcome, d.err
}

func (d *fakeDispatcher) TestConnection(ctx context.Context, url string) (webhook.ConnectionResult, error) {
	return webhook.ConnectionResult{Status: webhook.StatusSuccess, Title: "Connection Successful"}, nil
}

func (d *fakeDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type recordedEvent struct {
	kind      notifications.EventType
	sessionID string
	data      any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) record(kind notifications.EventType, sessionID string, data any) {
	n.mu.Lock()
	n.events = append(n.events, recordedEvent{kind: kind, sessionID: sessionID, data: data})
	n.mu.Unlock()
}

func (n *recordingNotifier) NotifySessionsChanged(sessionID string, operation string) {
	n.record(notifications.EventSessionsChanged, sessionID, operation)
}

func (n *recordingNotifier) NotifyMessageAppended(sessionID string, message any) {
	n.record(notifications.EventMessageAppended, sessionID, message)
}

func (n *recordingNotifier) NotifyMessageRemoved(sessionID string, messageID string) {
	n.record(notifications.EventMessageRemoved, sessionID, messageID)
}

func (n *recordingNotifier) NotifyLoadingChanged(sessionID string, loading bool) {
	n.record(notifications.EventLoadingChanged, sessionID, loading)
}

func (n *recordingNotifier) NotifyToast(sessionID string, toast notifications.Toast) {
	n.record(notifications.EventToast, sessionID, toast)
}

func (n *recordingNotifier) toasts() []notifications.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notifications.Toast
	for _, e := range n.events {
		if t, ok := e.data.(notifications.Toast); ok {
			out = append(out, t)
		}
	}
	return out
}

func (n *recordingNotifier) kinds() []notifications.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifications.EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.kind)
	}
	return out
}

var errStoreDown = errors.New("store down")

func fixedClock() func() time.Time {
	t := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}
