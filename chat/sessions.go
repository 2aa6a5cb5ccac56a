package chat

import (
	"context"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/xiaoyuanzhu-com/webhook-chat/db"
	"github.com/xiaoyuanzhu-com/webhook-chat/notifications"
)

// DefaultSessionTitle names sessions created without a title
const DefaultSessionTitle = "New Chat"

// Sessions manages the session list
type Sessions struct {
	store      Store
	notifier   Notifier
	controller *Controller
}

// NewSessions creates a session manager sharing the controller's store
func NewSessions(controller *Controller) *Sessions {
	return &Sessions{
		store:      controller.store,
		notifier:   controller.notifier,
		controller: controller,
	}
}

// List returns sessions, most recently updated first
func (s *Sessions) List(ctx context.Context) ([]Session, error) {
	records, err := s.store.ListSessions()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list sessions")
	}

	sessions := make([]Session, 0, len(records))
	for _, r := range records {
		sessions = append(sessions, sessionFromRecord(r))
	}
	return sessions, nil
}

// Get returns one session
func (s *Sessions) Get(ctx context.Context, id string) (*Session, error) {
	r, err := s.store.GetSession(id)
	if err != nil {
		if pkgerrors.Is(err, db.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to get session")
	}
	session := sessionFromRecord(*r)
	return &session, nil
}

// Create adds a session; a blank title becomes DefaultSessionTitle
func (s *Sessions) Create(ctx context.Context, title string) (*Session, error) {
	session, err := s.create(title)
	if err != nil {
		s.toast("", notifications.Toast{
			Title:       "Error",
			Description: "Failed to create new chat",
			Variant:     notifications.ToastDestructive,
		})
		return nil, err
	}

	s.toast(session.ID, notifications.Toast{
		Title:       "Success",
		Description: "New chat created successfully",
		Variant:     notifications.ToastDefault,
	})
	return session, nil
}

func (s *Sessions) create(title string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultSessionTitle
	}

	r, err := s.store.CreateSession(title)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create session")
	}

	logger.Info().Str("sessionId", r.ID).Msg("session created")
	s.changed(r.ID, "create")

	session := sessionFromRecord(*r)
	return &session, nil
}

// Bootstrap returns the most recently updated session, creating one when
// none exist.
func (s *Sessions) Bootstrap(ctx context.Context) (*Session, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(sessions) > 0 {
		return &sessions[0], nil
	}
	return s.create(DefaultSessionTitle)
}

// Rename changes a session title
func (s *Sessions) Rename(ctx context.Context, id, title string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	if err := s.store.RenameSession(id, title); err != nil {
		if pkgerrors.Is(err, db.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to rename session")
	}

	s.changed(id, "rename")
	return s.Get(ctx, id)
}

// Delete removes a session and its messages. The last remaining session
// cannot be deleted.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	records, err := s.store.ListSessions()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to list sessions")
	}

	found := false
	for _, r := range records {
		if r.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrSessionNotFound
	}

	if len(records) <= 1 {
		s.toast(id, notifications.Toast{
			Title:       "Cannot Delete",
			Description: "You must have at least one chat session",
			Variant:     notifications.ToastDestructive,
		})
		return ErrLastSession
	}

	if err := s.controller.forget(id); err != nil {
		return err
	}

	if err := s.store.DeleteSession(id); err != nil {
		if pkgerrors.Is(err, db.ErrNotFound) {
			return ErrSessionNotFound
		}
		s.toast(id, notifications.Toast{
			Title:       "Error",
			Description: "Failed to delete chat",
			Variant:     notifications.ToastDestructive,
		})
		return pkgerrors.Wrap(err, "failed to delete session")
	}

	logger.Info().Str("sessionId", id).Msg("session deleted")
	s.changed(id, "delete")
	s.toast(id, notifications.Toast{
		Title:       "Success",
		Description: "Chat deleted successfully",
		Variant:     notifications.ToastDefault,
	})
	return nil
}

func (s *Sessions) changed(id, operation string) {
	if s.notifier != nil {
		s.notifier.NotifySessionsChanged(id, operation)
	}
}

func (s *Sessions) toast(id string, t notifications.Toast) {
	if s.notifier != nil {
		s.notifier.NotifyToast(id, t)
	}
}
