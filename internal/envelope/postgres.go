package envelope

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore shares envelopes between wallet hosts through a Postgres table
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the envelope table if needed
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS wallet_envelopes (
			auth_address TEXT PRIMARY KEY,
			encrypted_pin TEXT NOT NULL,
			iv TEXT NOT NULL,
			address TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create wallet_envelopes table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, authAddress string) (*Envelope, error) {
	var env Envelope
	err := s.pool.QueryRow(ctx,
		`SELECT encrypted_pin, iv, address FROM wallet_envelopes WHERE auth_address = $1`,
		normalizeKey(authAddress),
	).Scan(&env.EncryptedPin, &env.IV, &env.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope: %w", err)
	}
	return &env, nil
}

func (s *PostgresStore) Set(ctx context.Context, authAddress string, env Envelope) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO wallet_envelopes (auth_address, encrypted_pin, iv, address, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (auth_address) DO UPDATE SET
			encrypted_pin = EXCLUDED.encrypted_pin,
			iv = EXCLUDED.iv,
			address = EXCLUDED.address,
			updated_at = now()`,
		normalizeKey(authAddress), env.EncryptedPin, env.IV, env.Address)
	if err != nil {
		return fmt.Errorf("failed to set envelope: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
