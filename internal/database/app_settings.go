package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// Keys of the settings the CLI remembers between runs
const (
	SettingLastEvmAddress    = "last_evm_address"
	SettingLastSolanaAddress = "last_solana_address"
	SettingLastFuelAddress   = "last_fuel_address"
)

func (sqlm *SQLiteManager) InitAppSettingsTable() error {
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);
	`

	if _, err := sqlm.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create app_settings table: %v", err)
	}
	return nil
}

// GetSetting returns "" for a missing key
func (sqlm *SQLiteManager) GetSetting(key string) (string, error) {
	var value string
	err := sqlm.db.QueryRow("SELECT value FROM app_settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %v", key, err)
	}
	return value, nil
}

func (sqlm *SQLiteManager) SetSetting(key string, value string) error {
	_, err := sqlm.db.Exec(`
		INSERT INTO app_settings (key, value, updated_at)
		VALUES (?, ?, strftime('%s', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %v", key, err)
	}
	return nil
}

func (sqlm *SQLiteManager) DeleteSetting(key string) error {
	if _, err := sqlm.db.Exec("DELETE FROM app_settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %v", key, err)
	}
	return nil
}
