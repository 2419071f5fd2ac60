package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/crypto"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/envelope"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/identity"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/keys"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// Phase is the sign-in state of a Flow
type Phase string

const (
	PhaseDisconnected Phase = "Disconnected"
	PhaseConnected    Phase = "Connected"
	PhaseCreatingPin  Phase = "CreatingPin"
	PhaseUnlockingPin Phase = "UnlockingPin"
	PhaseUnlocked     Phase = "Unlocked"
)

// Flow drives sign-in and PIN entry against an identity provider. Steps of one
// attempt run strictly in order and any failure ends the attempt. Only the
// most recent SubmitPin may change the envelope store or the session state.
type Flow struct {
	provider   identity.Provider
	store      envelope.Store
	state      *State
	logger     *utils.LogsManager
	mu         sync.Mutex
	phase      Phase
	generation atomic.Uint64
}

func NewFlow(provider identity.Provider, store envelope.Store, state *State, logger *utils.LogsManager) *Flow {
	phase := PhaseDisconnected
	if provider.IsConnected() {
		phase = PhaseConnected
	}
	return &Flow{
		provider: provider,
		store:    store,
		state:    state,
		logger:   logger,
		phase:    phase,
	}
}

func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Flow) setPhase(phase Phase) {
	f.mu.Lock()
	f.phase = phase
	f.mu.Unlock()
}

func (f *Flow) State() *State {
	return f.state
}

// SignIn authenticates with the provider and moves to CreatingPin or
// UnlockingPin depending on whether an envelope exists for the address.
func (f *Flow) SignIn(ctx context.Context) error {
	if err := f.provider.SignIn(ctx); err != nil {
		return fmt.Errorf("identity sign-in failed: %w", err)
	}
	_, err := f.Resolve(ctx)
	return err
}

// Resolve re-reads the provider and envelope store and returns the phase PIN
// entry should use. An unlocked session stays unlocked.
func (f *Flow) Resolve(ctx context.Context) (Phase, error) {
	address := f.provider.Address()
	if !f.provider.IsConnected() || address == "" {
		f.setPhase(PhaseDisconnected)
		return PhaseDisconnected, nil
	}
	if f.state.Unlocked() {
		f.setPhase(PhaseUnlocked)
		return PhaseUnlocked, nil
	}

	f.setPhase(PhaseConnected)

	_, err := f.store.Get(ctx, address)
	switch {
	case err == nil:
		f.setPhase(PhaseUnlockingPin)
		return PhaseUnlockingPin, nil
	case errors.Is(err, envelope.ErrNotFound):
		f.setPhase(PhaseCreatingPin)
		return PhaseCreatingPin, nil
	default:
		return PhaseConnected, fmt.Errorf("failed to read wallet envelope: %w", err)
	}
}

// SubmitPin creates or unlocks the wallet with pin, according to the phase
func (f *Flow) SubmitPin(ctx context.Context, pin string) Result {
	gen := f.generation.Add(1)

	if err := crypto.ValidatePin(pin); err != nil {
		return failure(ErrInvalidPinFormat, err)
	}

	address := f.provider.Address()
	if !f.provider.IsConnected() || address == "" {
		f.setPhase(PhaseDisconnected)
		return failure(ErrNotConnected, identity.ErrNotSignedIn)
	}

	phase := f.Phase()
	if phase != PhaseCreatingPin && phase != PhaseUnlockingPin {
		resolved, err := f.Resolve(ctx)
		if err != nil {
			return failure(ErrUnknown, err)
		}
		phase = resolved
	}

	switch phase {
	case PhaseCreatingPin:
		return f.create(ctx, gen, address, pin)
	case PhaseUnlockingPin:
		return f.unlock(ctx, gen, address, pin)
	case PhaseUnlocked:
		return Result{Addresses: f.state.Addresses()}
	default:
		return failure(ErrNotConnected, identity.ErrNotSignedIn)
	}
}

func (f *Flow) superseded(gen uint64) bool {
	return f.generation.Load() != gen
}

func (f *Flow) sign(ctx context.Context, address, pin string) (string, Result, bool) {
	signed := f.provider.SignMessage(ctx, crypto.PinBindingMessage(address, pin))
	if !signed.OK() {
		reason := signed.Reason
		if reason == "" {
			reason = "provider returned no signature"
		}
		return "", failure(ErrSignatureFailed, errors.New(reason)), false
	}
	return signed.Signature, Result{}, true
}

func (f *Flow) create(ctx context.Context, gen uint64, address, pin string) Result {
	signature, res, ok := f.sign(ctx, address, pin)
	if f.superseded(gen) {
		return Result{Stale: true}
	}
	if !ok {
		return res
	}

	bundle, err := keys.BundleFromSignature(signature)
	if err != nil {
		return failure(ErrUnknown, err)
	}

	ciphertext, iv, err := crypto.EncryptPin(pin, signature)
	if err != nil {
		return failure(ErrUnknown, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.superseded(gen) {
		return Result{Stale: true}
	}

	env := envelope.Envelope{EncryptedPin: ciphertext, IV: iv, Address: bundle.EVM.Address}
	if err := f.store.Set(ctx, address, env); err != nil {
		return failure(ErrUnknown, fmt.Errorf("failed to store wallet envelope: %w", err))
	}

	f.state.Set(bundle)
	f.phase = PhaseUnlocked
	f.logger.Info(fmt.Sprintf("Created wallet %s for %s", bundle.EVM.Address, address), "session")

	return Result{Created: true, Addresses: bundle.Addresses()}
}

func (f *Flow) unlock(ctx context.Context, gen uint64, address, pin string) Result {
	env, err := f.store.Get(ctx, address)
	if err != nil {
		return failure(kindOf(err), err)
	}

	signature, res, ok := f.sign(ctx, address, pin)
	if f.superseded(gen) {
		return Result{Stale: true}
	}
	if !ok {
		return res
	}

	decrypted, err := crypto.DecryptPin(env.EncryptedPin, env.IV, signature)
	if err != nil {
		return failure(ErrInvalidPIN, err)
	}
	if decrypted != pin {
		return failure(ErrInvalidPIN, errors.New("pin does not match"))
	}

	bundle, err := keys.BundleFromSignature(signature)
	if err != nil {
		return failure(ErrUnknown, err)
	}
	if !strings.EqualFold(bundle.EVM.Address, env.Address) {
		f.logger.Warn(fmt.Sprintf("Derived wallet %s does not match stored %s for %s", bundle.EVM.Address, env.Address, address), "session")
		return failure(ErrWalletMismatch, fmt.Errorf("derived %s, stored %s", bundle.EVM.Address, env.Address))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.superseded(gen) {
		return Result{Stale: true}
	}

	f.state.Set(bundle)
	f.phase = PhaseUnlocked
	f.logger.Info(fmt.Sprintf("Unlocked wallet %s for %s", bundle.EVM.Address, address), "session")

	return Result{Addresses: bundle.Addresses()}
}

// SignOut ends the provider session and clears the wallet state. Attempts in
// flight become stale.
func (f *Flow) SignOut(ctx context.Context) error {
	f.generation.Add(1)

	err := f.provider.SignOut(ctx)
	f.state.Clear()
	f.setPhase(PhaseDisconnected)

	if err != nil {
		return fmt.Errorf("identity sign-out failed: %w", err)
	}
	return nil
}
