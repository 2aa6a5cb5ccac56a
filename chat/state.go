package chat

import (
	"sync"
)

// State is the in-memory view of one session: its ordered message list and
// the loading flag. Every mutation replaces the list, so a snapshot never
// observes a partial write.
type State struct {
	sessionID string

	mu       sync.Mutex
	messages []Message
	loading  bool
	sending  bool
}

// NewState creates a state holding messages for sessionID
func NewState(sessionID string, messages []Message) *State {
	return &State{
		sessionID: sessionID,
		messages:  append([]Message(nil), messages...),
	}
}

// SessionID returns the owning session
func (s *State) SessionID() string {
	return s.sessionID
}

// Messages returns a copy of the current message list
func (s *State) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Loading reports whether a send is awaiting its reply
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Busy reports whether a send is in progress
func (s *State) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending || s.loading
}

func (s *State) append(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Message, len(s.messages), len(s.messages)+1)
	copy(next, s.messages)
	s.messages = append(next, m)
}

// remove drops the message with id; it reports whether one was removed
func (s *State) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.ID != id {
			next = append(next, m)
		}
	}
	removed := len(next) != len(s.messages)
	s.messages = next
	return removed
}

func (s *State) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// acquire claims the send slot; only one send per session runs at a time
func (s *State) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending || s.loading {
		return false
	}
	s.sending = true
	return true
}

func (s *State) release() {
	s.mu.Lock()
	s.sending = false
	s.mu.Unlock()
}
