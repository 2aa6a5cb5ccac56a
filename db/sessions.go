package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the addressed row does not exist
var ErrNotFound = errors.New("not found")

const sessionColumns = `id, title, created_at, updated_at`

// CreateSession inserts a new chat session with a generated id
func (d *DB) CreateSession(title string) (*ChatSession, error) {
	now := NowMs()
	s := &ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO chat_sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`
	d.logQuery("run", query, []QueryParam{s.ID, s.Title, s.CreatedAt, s.UpdatedAt})
	if _, err := d.conn.Exec(query, s.ID, s.Title, s.CreatedAt, s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	logger.Debug().Str("id", s.ID).Str("title", s.Title).Msg("chat session created")
	return s, nil
}

// ListSessions returns all sessions, most recently updated first
func (d *DB) ListSessions() ([]ChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions ORDER BY updated_at DESC, rowid DESC`
	d.logQuery("select", query, nil)

	sessions, err := Select(d.conn, query, nil, func(rows *sql.Rows) (ChatSession, error) {
		return scanChatSession(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	return sessions, nil
}

// GetSession returns a session by id, or ErrNotFound
func (d *DB) GetSession(id string) (*ChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE id = ?`
	d.logQuery("get", query, []QueryParam{id})

	s, err := SelectOne(d.conn, query, []QueryParam{id}, func(row *sql.Row) (ChatSession, error) {
		return scanChatSession(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session %s: %w", id, err)
	}
	if s == nil {
		return nil, ErrNotFound
	}
	return s, nil
}

// CountSessions returns the number of stored sessions
func (d *DB) CountSessions() (int64, error) {
	query := `SELECT COUNT(*) FROM chat_sessions`
	d.logQuery("count", query, nil)
	return Count(d.conn, query)
}

// RenameSession updates a session's title and bumps updated_at
func (d *DB) RenameSession(id, title string) error {
	query := `UPDATE chat_sessions SET title = ?, updated_at = ? WHERE id = ?`
	now := NowMs()
	d.logQuery("run", query, []QueryParam{title, now, id})

	res, err := RunWithResult(d.conn, query, title, now, id)
	if err != nil {
		return fmt.Errorf("failed to rename chat session %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession deletes a session's messages and then the session itself
func (d *DB) DeleteSession(id string) error {
	var deletedMessages int64

	err := d.Transaction(func(tx *sql.Tx) error {
		msgs, err := RunWithResult(tx, `DELETE FROM chat_messages WHERE chat_session_id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete chat messages: %w", err)
		}
		deletedMessages = msgs.RowsAffected

		res, err := RunWithResult(tx, `DELETE FROM chat_sessions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete chat session: %w", err)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug().
		Str("id", id).
		Int64("messages", deletedMessages).
		Msg("chat session deleted")
	return nil
}
