package session

import (
	"context"
	"sync"
	"testing"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/crypto"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/envelope"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/identity"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/keys"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

func newDevProvider(t *testing.T, hexKey string) *identity.DevProvider {
	t.Helper()
	key, err := ethcrypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Failed to parse key: %v", err)
	}
	return identity.NewDevProvider(key)
}

const (
	aliceKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	bobKey   = "8da4ef21b864d2cc526dbdb2a120bd2874c36c9d0a1fb7f8c63d7f7a8b41de8f"
)

func signedInFlow(t *testing.T, provider identity.Provider, store envelope.Store) *Flow {
	t.Helper()
	flow := NewFlow(provider, store, NewState(), utils.NewDiscardLogsManager())
	if err := flow.SignIn(context.Background()); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return flow
}

func TestCreateThenUnlock(t *testing.T) {
	provider := newDevProvider(t, aliceKey)
	store := envelope.NewMemoryStore()
	ctx := context.Background()

	flow := signedInFlow(t, provider, store)
	if flow.Phase() != PhaseCreatingPin {
		t.Fatalf("Expected CreatingPin, got %s", flow.Phase())
	}

	created := flow.SubmitPin(ctx, "1234")
	if !created.OK() || !created.Created {
		t.Fatalf("Expected wallet creation, got %s", created)
	}
	if flow.Phase() != PhaseUnlocked || !flow.State().Unlocked() {
		t.Fatal("Expected the session to be unlocked")
	}

	env, err := store.Get(ctx, provider.Address())
	if err != nil {
		t.Fatalf("Expected an envelope, got %v", err)
	}
	if env.Address != created.Addresses.EVM {
		t.Errorf("Expected envelope address %s, got %s", created.Addresses.EVM, env.Address)
	}
	if env.EncryptedPin == "1234" {
		t.Error("PIN must not be stored in plaintext")
	}

	if err := flow.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if flow.State().Unlocked() || flow.Phase() != PhaseDisconnected {
		t.Fatal("Expected sign-out to clear the session")
	}

	if err := flow.SignIn(ctx); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if flow.Phase() != PhaseUnlockingPin {
		t.Fatalf("Expected UnlockingPin, got %s", flow.Phase())
	}

	unlocked := flow.SubmitPin(ctx, "1234")
	if !unlocked.OK() || unlocked.Created {
		t.Fatalf("Expected unlock, got %s", unlocked)
	}
	if unlocked.Addresses != created.Addresses {
		t.Errorf("Expected the same bundle after unlock, got %+v vs %+v", unlocked.Addresses, created.Addresses)
	}
}

func TestUnlockWithWrongPin(t *testing.T) {
	provider := newDevProvider(t, aliceKey)
	store := envelope.NewMemoryStore()
	ctx := context.Background()

	signedInFlow(t, provider, store).SubmitPin(ctx, "1234")

	flow := signedInFlow(t, provider, store)
	result := flow.SubmitPin(ctx, "4321")
	if result.Err != ErrInvalidPIN {
		t.Fatalf("Expected InvalidPIN, got %s", result)
	}
	if flow.State().Unlocked() {
		t.Error("Expected the session to stay locked")
	}

	if retry := flow.SubmitPin(ctx, "1234"); !retry.OK() {
		t.Errorf("Expected retry with the right PIN to succeed, got %s", retry)
	}
}

func TestUnlockDetectsWalletMismatch(t *testing.T) {
	provider := newDevProvider(t, aliceKey)
	store := envelope.NewMemoryStore()
	ctx := context.Background()

	created := signedInFlow(t, provider, store).SubmitPin(ctx, "1234")

	// the envelope decrypts but claims the wallet derived from another identity
	other := signedInFlow(t, newDevProvider(t, bobKey), envelope.NewMemoryStore()).SubmitPin(ctx, "1234")
	env, _ := store.Get(ctx, provider.Address())
	env.Address = other.Addresses.EVM
	store.Set(ctx, provider.Address(), *env)

	result := signedInFlow(t, provider, store).SubmitPin(ctx, "1234")
	if result.Err != ErrWalletMismatch {
		t.Fatalf("Expected WalletMismatch, got %s", result)
	}
	if created.Addresses.EVM == other.Addresses.EVM {
		t.Fatal("Expected different identities to derive different wallets")
	}

	wrongPin := Result{Err: ErrInvalidPIN}
	if result.UserMessage() != wrongPin.UserMessage() {
		t.Error("WalletMismatch and InvalidPIN must read the same to the user")
	}
}

func TestDifferentIdentityCannotDecrypt(t *testing.T) {
	alice := newDevProvider(t, aliceKey)
	store := envelope.NewMemoryStore()
	ctx := context.Background()

	signedInFlow(t, alice, store).SubmitPin(ctx, "1234")
	env, _ := store.Get(ctx, alice.Address())

	bob := newDevProvider(t, bobKey)
	bob.SignIn(ctx)
	signed := bob.SignMessage(ctx, crypto.PinBindingMessage(alice.Address(), "1234"))
	if _, err := crypto.DecryptPin(env.EncryptedPin, env.IV, signed.Signature); err == nil {
		t.Error("Expected another identity's signature to fail decryption")
	}
}

func TestSubmitPinFailures(t *testing.T) {
	ctx := context.Background()

	provider := newDevProvider(t, aliceKey)
	flow := NewFlow(provider, envelope.NewMemoryStore(), NewState(), utils.NewDiscardLogsManager())
	if result := flow.SubmitPin(ctx, "1234"); result.Err != ErrNotConnected {
		t.Errorf("Expected NotConnected, got %s", result)
	}

	flow = signedInFlow(t, provider, envelope.NewMemoryStore())
	for _, pin := range []string{"", "123", "12345", "12a4"} {
		if result := flow.SubmitPin(ctx, pin); result.Err != ErrInvalidPinFormat {
			t.Errorf("PIN %q: expected InvalidPinFormat, got %s", pin, result)
		}
	}

	declining := &decliningProvider{DevProvider: provider}
	flow = signedInFlow(t, declining, envelope.NewMemoryStore())
	result := flow.SubmitPin(ctx, "1234")
	if result.Err != ErrSignatureFailed {
		t.Errorf("Expected SignatureFailed, got %s", result)
	}
	if result.UserMessage() == (Result{Err: ErrInvalidPIN}).UserMessage() {
		t.Error("Expected a distinct message for a declined signature")
	}
}

func TestUnlockWithoutEnvelope(t *testing.T) {
	provider := newDevProvider(t, aliceKey)
	store := &vanishingStore{Store: envelope.NewMemoryStore()}
	ctx := context.Background()

	signedInFlow(t, provider, store).SubmitPin(ctx, "1234")

	flow := signedInFlow(t, provider, store)
	if flow.Phase() != PhaseUnlockingPin {
		t.Fatalf("Expected UnlockingPin, got %s", flow.Phase())
	}

	store.vanish()
	if result := flow.SubmitPin(ctx, "1234"); result.Err != ErrNoWallet {
		t.Errorf("Expected NoWallet, got %s", result)
	}
}

func TestStaleAttemptIsDiscarded(t *testing.T) {
	gated := &gatedProvider{
		DevProvider: newDevProvider(t, aliceKey),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	store := envelope.NewMemoryStore()
	ctx := context.Background()

	flow := signedInFlow(t, gated, store)

	var changes int
	var mu sync.Mutex
	flow.State().OnChange(func(*keys.Bundle) {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	first := make(chan Result, 1)
	go func() { first <- flow.SubmitPin(ctx, "1111") }()
	<-gated.entered

	second := flow.SubmitPin(ctx, "2222")
	if !second.OK() {
		t.Fatalf("Expected the newer attempt to succeed, got %s", second)
	}

	close(gated.release)
	select {
	case result := <-first:
		if !result.Stale {
			t.Fatalf("Expected the superseded attempt to be stale, got %s", result)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Superseded attempt never returned")
	}

	env, _ := store.Get(ctx, gated.Address())
	signed := gated.DevProvider.SignMessage(ctx, crypto.PinBindingMessage(gated.Address(), "2222"))
	if pin, err := crypto.DecryptPin(env.EncryptedPin, env.IV, signed.Signature); err != nil || pin != "2222" {
		t.Errorf("Expected the stored envelope to hold the newer PIN, got %q (%v)", pin, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if changes != 1 {
		t.Errorf("Expected exactly one state change, got %d", changes)
	}
}

func TestSignOutNotifiesListeners(t *testing.T) {
	flow := signedInFlow(t, newDevProvider(t, aliceKey), envelope.NewMemoryStore())

	var seen []bool
	flow.State().OnChange(func(b *keys.Bundle) { seen = append(seen, b != nil) })

	flow.SubmitPin(context.Background(), "1234")
	flow.SignOut(context.Background())

	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("Expected set then clear notifications, got %v", seen)
	}
}

type decliningProvider struct {
	*identity.DevProvider
}

func (p *decliningProvider) SignMessage(ctx context.Context, message string) identity.SignResult {
	return identity.SignResult{Status: identity.StatusError, Reason: "user rejected"}
}

type gatedProvider struct {
	*identity.DevProvider
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

// the first signature request waits for release
func (p *gatedProvider) SignMessage(ctx context.Context, message string) identity.SignResult {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.release
	}
	return p.DevProvider.SignMessage(ctx, message)
}

type vanishingStore struct {
	envelope.Store
	mu   sync.Mutex
	gone bool
}

func (s *vanishingStore) vanish() {
	s.mu.Lock()
	s.gone = true
	s.mu.Unlock()
}

func (s *vanishingStore) Get(ctx context.Context, authAddress string) (*envelope.Envelope, error) {
	s.mu.Lock()
	gone := s.gone
	s.mu.Unlock()
	if gone {
		return nil, envelope.ErrNotFound
	}
	return s.Store.Get(ctx, authAddress)
}
