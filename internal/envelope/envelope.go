package envelope

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("wallet envelope not found")

// Envelope is the persisted PIN record of one authenticated address. Address is
// the EVM address derived when the wallet was created.
type Envelope struct {
	EncryptedPin string `json:"encryptedPin"`
	IV           string `json:"iv"`
	Address      string `json:"address"`
}

// Store is a key-value map from auth address to envelope.
// Get returns ErrNotFound when nothing is stored.
type Store interface {
	Get(ctx context.Context, authAddress string) (*Envelope, error)
	Set(ctx context.Context, authAddress string, env Envelope) error
}

func normalizeKey(authAddress string) string {
	return strings.ToLower(strings.TrimSpace(authAddress))
}
