package db

import (
	"database/sql"
)

// Setting keys
const (
	SettingLogLevel = "log_level"
)

// Default settings
var defaultSettings = map[string]string{
	SettingLogLevel: "info",
}

// GetSetting retrieves a setting by key
func (d *DB) GetSetting(key string) (string, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		if defaultValue, ok := defaultSettings[key]; ok {
			return defaultValue, nil
		}
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting updates or creates a setting
func (d *DB) SetSetting(key, value string) error {
	_, err := d.conn.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, NowMs())
	return err
}

// GetAllSettings retrieves all settings, with defaults for unset keys
func (d *DB) GetAllSettings() (map[string]string, error) {
	settings := make(map[string]string)
	for k, v := range defaultSettings {
		settings[k] = v
	}

	rows, err := d.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

// UpdateSettings writes several settings in one transaction
func (d *DB) UpdateSettings(updates map[string]string) error {
	return d.Transaction(func(tx *sql.Tx) error {
		for key, value := range updates {
			if _, err := tx.Exec(`
				INSERT INTO settings (key, value, updated_at)
				VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET
					value = excluded.value,
					updated_at = excluded.updated_at
			`, key, value, NowMs()); err != nil {
				return err
			}
		}
		return nil
	})
}
