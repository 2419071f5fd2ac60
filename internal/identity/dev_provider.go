package identity

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/crypto/keystore"
)

// DevProvider is a local identity backed by an EVM key. Messages are signed as
// EIP-191 personal messages, the same shape a browser wallet produces.
type DevProvider struct {
	key       *ecdsa.PrivateKey
	address   string
	connected bool
	mu        sync.RWMutex
}

func NewDevProvider(key *ecdsa.PrivateKey) *DevProvider {
	return &DevProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}
}

// LoadDevProvider unlocks the identity keystore at path, creating it with a
// fresh key when the file does not exist.
func LoadDevProvider(path string, passphrase keystore.PassphraseSource) (*DevProvider, error) {
	ks, err := keystore.LoadKeystore(path)
	if errors.Is(err, os.ErrNotExist) {
		return createDevProvider(path, passphrase)
	}
	if err != nil {
		return nil, err
	}

	secret, err := passphrase(false)
	if err != nil {
		return nil, err
	}

	data, err := keystore.UnlockKeystore(ks, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock identity keystore: %w", err)
	}

	key, err := crypto.ToECDSA(data.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid identity key: %v", err)
	}

	return NewDevProvider(key), nil
}

func createDevProvider(path string, passphrase keystore.PassphraseSource) (*DevProvider, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity key: %v", err)
	}
	provider := NewDevProvider(key)

	secret, err := passphrase(true)
	if err != nil {
		return nil, err
	}

	ks, err := keystore.CreateKeystore(secret, crypto.FromECDSA(key), provider.address)
	if err != nil {
		return nil, err
	}
	if err := keystore.SaveKeystore(ks, path); err != nil {
		return nil, err
	}

	return provider, nil
}

func (p *DevProvider) Address() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.connected {
		return ""
	}
	return p.address
}

func (p *DevProvider) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

func (p *DevProvider) SignIn(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	return nil
}

func (p *DevProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	return nil
}

func (p *DevProvider) SignMessage(ctx context.Context, message string) SignResult {
	if err := ctx.Err(); err != nil {
		return SignResult{Status: StatusError, Reason: err.Error()}
	}
	if !p.IsConnected() {
		return SignResult{Status: StatusError, Reason: ErrNotSignedIn.Error()}
	}

	signature, err := SignPersonalMessage(p.key, message)
	if err != nil {
		return SignResult{Status: StatusError, Reason: err.Error()}
	}
	return SignResult{Status: StatusSuccess, Signature: signature}
}

// SignPersonalMessage returns the 65-byte EIP-191 signature of message as 0x hex
func SignPersonalMessage(key *ecdsa.PrivateKey, message string) (string, error) {
	signature, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %v", err)
	}
	signature[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(signature), nil
}

// RecoverSigner returns the checksummed address that produced an EIP-191 signature
func RecoverSigner(message, signatureHex string) (string, error) {
	signature, err := hexutil.Decode(signatureHex)
	if err != nil || len(signature) != crypto.SignatureLength {
		return "", ErrInvalidSignature
	}

	if signature[crypto.RecoveryIDOffset] >= 27 {
		signature[crypto.RecoveryIDOffset] -= 27
	}

	publicKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), signature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*publicKey).Hex(), nil
}
