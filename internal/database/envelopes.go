package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// EnvelopeRow is one persisted PIN envelope
type EnvelopeRow struct {
	AuthAddress  string
	EncryptedPin string
	IV           string
	Address      string
	CreatedAt    int64
	UpdatedAt    int64
}

// InitEnvelopesTable creates the table holding one PIN envelope per auth address
func (sqlm *SQLiteManager) InitEnvelopesTable() error {
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS wallet_envelopes (
			auth_address TEXT PRIMARY KEY,
			encrypted_pin TEXT NOT NULL,
			iv TEXT NOT NULL,
			address TEXT NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);
	`

	if _, err := sqlm.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create wallet_envelopes table: %v", err)
	}
	return nil
}

// GetEnvelope returns nil, nil when no envelope is stored for authAddress
func (sqlm *SQLiteManager) GetEnvelope(authAddress string) (*EnvelopeRow, error) {
	row := EnvelopeRow{}
	err := sqlm.db.QueryRow(`
		SELECT auth_address, encrypted_pin, iv, address, created_at, updated_at
		FROM wallet_envelopes WHERE auth_address = ?
	`, strings.ToLower(authAddress)).Scan(
		&row.AuthAddress, &row.EncryptedPin, &row.IV, &row.Address, &row.CreatedAt, &row.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope for %s: %v", authAddress, err)
	}
	return &row, nil
}

// SetEnvelope stores or fully replaces the envelope of authAddress
func (sqlm *SQLiteManager) SetEnvelope(authAddress, encryptedPin, iv, address string) error {
	_, err := sqlm.db.Exec(`
		INSERT INTO wallet_envelopes (auth_address, encrypted_pin, iv, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, strftime('%s', 'now'), strftime('%s', 'now'))
		ON CONFLICT(auth_address) DO UPDATE SET
			encrypted_pin = excluded.encrypted_pin,
			iv = excluded.iv,
			address = excluded.address,
			updated_at = excluded.updated_at
	`, strings.ToLower(authAddress), encryptedPin, iv, address)
	if err != nil {
		return fmt.Errorf("failed to set envelope for %s: %v", authAddress, err)
	}

	if sqlm.logger != nil {
		sqlm.logger.Debug(fmt.Sprintf("Stored wallet envelope for %s", authAddress), "database")
	}
	return nil
}

func (sqlm *SQLiteManager) DeleteEnvelope(authAddress string) error {
	if _, err := sqlm.db.Exec("DELETE FROM wallet_envelopes WHERE auth_address = ?", strings.ToLower(authAddress)); err != nil {
		return fmt.Errorf("failed to delete envelope for %s: %v", authAddress, err)
	}
	return nil
}

func (sqlm *SQLiteManager) CountEnvelopes() (int, error) {
	var count int
	if err := sqlm.db.QueryRow("SELECT COUNT(*) FROM wallet_envelopes").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count envelopes: %v", err)
	}
	return count, nil
}
