package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "sentient-wallet"

// KeyringStore keeps each envelope as a JSON secret in the OS keyring
type KeyringStore struct {
	service string
}

func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = keyringService
	}
	return &KeyringStore{service: service}
}

func (s *KeyringStore) Get(ctx context.Context, authAddress string) (*Envelope, error) {
	secret, err := keyring.Get(s.service, normalizeKey(authAddress))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read envelope from keyring: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(secret), &env); err != nil {
		return nil, fmt.Errorf("corrupted keyring envelope: %v", err)
	}
	return &env, nil
}

func (s *KeyringStore) Set(ctx context.Context, authAddress string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := keyring.Set(s.service, normalizeKey(authAddress), string(data)); err != nil {
		return fmt.Errorf("failed to write envelope to keyring: %v", err)
	}
	return nil
}
