package db

import (
	"database/sql"
)

func init() {
	RegisterMigration(Migration{
		Version:     1,
		Description: "Initial schema - chat sessions and messages",
		Up:          migration001_initial,
	})
}

func migration001_initial(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS chat_sessions (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return err
	}

	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated_at ON chat_sessions(updated_at DESC)`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS chat_messages (
			id              TEXT PRIMARY KEY,
			chat_session_id TEXT NOT NULL REFERENCES chat_sessions(id),
			content         TEXT NOT NULL,
			sender          TEXT NOT NULL CHECK (sender IN ('user', 'n8n')),
			timestamp       INTEGER NOT NULL
		)
	`); err != nil {
		return err
	}

	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_ts ON chat_messages(chat_session_id, timestamp)`); err != nil {
		return err
	}

	return tx.Commit()
}
