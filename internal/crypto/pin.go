package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	// PinLength is the number of digits of a wallet PIN
	PinLength = 4

	ivSize = 12

	pinMessagePrefix = "Wallet Access ― "
	fingerprintSize  = 9
)

// DeriveKey turns a provider signature into an AES-256 key
func DeriveKey(signature string) []byte {
	sum := sha256.Sum256([]byte(signature))
	return sum[:]
}

func newGCM(signature string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(signature))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// ValidatePin accepts exactly PinLength ASCII digits
func ValidatePin(pin string) error {
	if len(pin) != PinLength {
		return ErrInvalidPinFormat
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return ErrInvalidPinFormat
		}
	}
	return nil
}

// EncryptPin seals pin under the key derived from signature. Every call draws
// a fresh IV. Both outputs are base64 (std encoding).
func EncryptPin(pin, signature string) (ciphertext string, iv string, err error) {
	gcm, err := newGCM(signature)
	if err != nil {
		return "", "", err
	}

	nonce := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", "", fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(pin), nil)

	return base64.StdEncoding.EncodeToString(sealed), base64.StdEncoding.EncodeToString(nonce), nil
}

// DecryptPin opens a sealed PIN. Any failure, including a signature other than
// the one used for sealing, is reported as ErrDecryptionFailed.
func DecryptPin(ciphertext, iv, signature string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %v", ErrDecryptionFailed, err)
	}

	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("%w: iv: %v", ErrDecryptionFailed, err)
	}
	if len(nonce) != ivSize {
		return "", fmt.Errorf("%w: iv must be %d bytes, got %d", ErrDecryptionFailed, ivSize, len(nonce))
	}

	gcm, err := newGCM(signature)
	if err != nil {
		return "", err
	}

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plain), nil
}

// PinBindingMessage is the message the identity provider signs for address and pin.
// It embeds a keccak fingerprint of both so signatures never transfer between
// accounts or PINs.
func PinBindingMessage(address, pin string) string {
	digest := hexutil.Encode(ethcrypto.Keccak256([]byte(address + pin)))
	return pinMessagePrefix + digest[:fingerprintSize] + digest[len(digest)-fingerprintSize:]
}
