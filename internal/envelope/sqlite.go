package envelope

import (
	"context"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/database"
)

// SQLiteStore persists envelopes in the local wallet database
type SQLiteStore struct {
	db *database.SQLiteManager
}

func NewSQLiteStore(db *database.SQLiteManager) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, authAddress string) (*Envelope, error) {
	row, err := s.db.GetEnvelope(normalizeKey(authAddress))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return &Envelope{EncryptedPin: row.EncryptedPin, IV: row.IV, Address: row.Address}, nil
}

func (s *SQLiteStore) Set(ctx context.Context, authAddress string, env Envelope) error {
	return s.db.SetEnvelope(normalizeKey(authAddress), env.EncryptedPin, env.IV, env.Address)
}
