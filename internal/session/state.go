package session

import (
	"sync"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/keys"
)

// State holds the unlocked wallet bundle. It is written once per successful
// create or unlock and cleared once per sign-out; it is never half-populated.
type State struct {
	mu        sync.RWMutex
	bundle    *keys.Bundle
	listeners []func(*keys.Bundle)
}

func NewState() *State {
	return &State{}
}

// Set replaces the active bundle and notifies listeners
func (s *State) Set(bundle *keys.Bundle) {
	if bundle == nil || bundle.EVM == nil || bundle.Solana == nil || bundle.Fuel == nil {
		return
	}

	s.mu.Lock()
	s.bundle = bundle
	listeners := append([]func(*keys.Bundle){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(bundle)
	}
}

// Clear empties the state; listeners receive nil
func (s *State) Clear() {
	s.mu.Lock()
	wasSet := s.bundle != nil
	s.bundle = nil
	listeners := append([]func(*keys.Bundle){}, s.listeners...)
	s.mu.Unlock()

	if !wasSet {
		return
	}
	for _, fn := range listeners {
		fn(nil)
	}
}

// Bundle returns a copy of the active bundle, or nil when locked
func (s *State) Bundle() *keys.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bundle == nil {
		return nil
	}
	bundle := *s.bundle
	return &bundle
}

func (s *State) Addresses() keys.Addresses {
	return s.Bundle().Addresses()
}

func (s *State) Unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle != nil
}

// OnChange registers fn to run after every Set and Clear. fn may run while
// a Flow holds its lock, so it must not call back into the Flow.
func (s *State) OnChange(fn func(*keys.Bundle)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}
