package db

import (
	"database/sql"
	"fmt"
)

const messageColumns = `id, chat_session_id, content, sender, timestamp`

// ListMessages returns a session's messages in timestamp order.
// Messages saved within the same millisecond keep their insertion order.
func (d *DB) ListMessages(sessionID string) ([]ChatMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM chat_messages WHERE chat_session_id = ? ORDER BY timestamp ASC, rowid ASC`
	d.logQuery("select", query, []QueryParam{sessionID})

	msgs, err := Select(d.conn, query, []QueryParam{sessionID}, func(rows *sql.Rows) (ChatMessage, error) {
		return scanChatMessage(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for session %s: %w", sessionID, err)
	}
	return msgs, nil
}

// SaveMessage inserts a message and bumps the owning session's updated_at
func (d *DB) SaveMessage(sessionID string, m ChatMessage) error {
	m.SessionID = sessionID
	if m.Timestamp == 0 {
		m.Timestamp = NowMs()
	}

	err := d.Transaction(func(tx *sql.Tx) error {
		query := `INSERT INTO chat_messages (` + messageColumns + `) VALUES (?, ?, ?, ?, ?)`
		d.logQuery("run", query, []QueryParam{m.ID, m.SessionID, m.Content, m.Sender, m.Timestamp})
		if _, err := tx.Exec(query, m.ID, m.SessionID, m.Content, m.Sender, m.Timestamp); err != nil {
			return fmt.Errorf("failed to insert message %s: %w", m.ID, err)
		}

		res, err := RunWithResult(tx, `UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, NowMs(), sessionID)
		if err != nil {
			return fmt.Errorf("failed to touch session %s: %w", sessionID, err)
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
		Str("id", m.ID).
		Str("session_id", sessionID).
		Str("sender", m.Sender).
		Msg("message saved")
	return nil
}
