package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// Keystore is the on-disk form of an encrypted identity key
type Keystore struct {
	Version int    `json:"version"`
	Address string `json:"address"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

// KeystoreData is the decrypted payload
type KeystoreData struct {
	PrivateKey []byte `json:"private_key"`
}

const (
	// Argon2id parameters (OWASP)
	argon2Time      = 3
	argon2Memory    = 64 * 1024
	argon2Threads   = 4
	argon2KeyLength = 32

	saltSize       = 32
	nonceSize      = 12
	privateKeySize = 32

	keystoreVersion = 1
)

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLength)
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %v", err)
	}
	return cipher.NewGCM(block)
}

// CreateKeystore encrypts a 32-byte secp256k1 private key under passphrase.
// address is stored in clear so the identity can be shown without unlocking.
func CreateKeystore(passphrase string, privateKey []byte, address string) (*Keystore, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if len(privateKey) != privateKeySize {
		return nil, fmt.Errorf("invalid private key size: %d", len(privateKey))
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %v", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %v", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(&KeystoreData{PrivateKey: privateKey})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keystore data: %v", err)
	}

	return &Keystore{
		Version: keystoreVersion,
		Address: address,
		Salt:    salt,
		Nonce:   nonce,
		Data:    gcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// UnlockKeystore decrypts ks with passphrase
func UnlockKeystore(ks *Keystore, passphrase string) (*KeystoreData, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if ks.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported keystore version: %d", ks.Version)
	}
	if len(ks.Salt) != saltSize || len(ks.Nonce) != nonceSize {
		return nil, fmt.Errorf("corrupted keystore: salt %d bytes, nonce %d bytes", len(ks.Salt), len(ks.Nonce))
	}

	gcm, err := newGCM(passphrase, ks.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, ks.Nonce, ks.Data, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}

	var data KeystoreData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keystore data: %v", err)
	}
	if len(data.PrivateKey) != privateKeySize {
		return nil, fmt.Errorf("corrupted keystore: invalid private key size")
	}

	return &data, nil
}

// SaveKeystore writes ks readable by the owner only
func SaveKeystore(ks *Keystore, path string) error {
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore: %v", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keystore file: %v", err)
	}
	return nil
}

func LoadKeystore(path string) (*Keystore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore file: %w", err)
	}

	var ks Keystore
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keystore: %v", err)
	}
	return &ks, nil
}
