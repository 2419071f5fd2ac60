package envelope

import (
	"context"
	"sync"
)

// MemoryStore keeps envelopes for the lifetime of the process
type MemoryStore struct {
	envelopes map[string]Envelope
	mu        sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{envelopes: make(map[string]Envelope)}
}

func (s *MemoryStore) Get(ctx context.Context, authAddress string) (*Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	env, ok := s.envelopes[normalizeKey(authAddress)]
	if !ok {
		return nil, ErrNotFound
	}
	return &env, nil
}

func (s *MemoryStore) Set(ctx context.Context, authAddress string, env Envelope) error {
	s.mu.Lock()
	s.envelopes[normalizeKey(authAddress)] = env
	s.mu.Unlock()
	return nil
}
