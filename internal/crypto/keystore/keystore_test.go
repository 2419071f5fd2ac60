package keystore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testKey() []byte {
	key := make([]byte, privateKeySize)
	for i := range key {
		key[i] = byte(0x40 + i)
	}
	return key
}

func TestCreateAndUnlockKeystore(t *testing.T) {
	ks, err := CreateKeystore("test-passphrase-123", testKey(), "0xabc")
	if err != nil {
		t.Fatalf("Failed to create keystore: %v", err)
	}

	if ks.Version != keystoreVersion {
		t.Errorf("Expected version %d, got %d", keystoreVersion, ks.Version)
	}
	if len(ks.Salt) != saltSize {
		t.Errorf("Expected salt size %d, got %d", saltSize, len(ks.Salt))
	}
	if len(ks.Nonce) != nonceSize {
		t.Errorf("Expected nonce size %d, got %d", nonceSize, len(ks.Nonce))
	}
	if bytes.Contains(ks.Data, testKey()) {
		t.Error("Private key stored in clear")
	}

	data, err := UnlockKeystore(ks, "test-passphrase-123")
	if err != nil {
		t.Fatalf("Failed to unlock keystore: %v", err)
	}
	if !bytes.Equal(data.PrivateKey, testKey()) {
		t.Error("Private key mismatch")
	}
}

func TestUnlockWithWrongPassphrase(t *testing.T) {
	ks, err := CreateKeystore("correct-passphrase", testKey(), "0xabc")
	if err != nil {
		t.Fatalf("Failed to create keystore: %v", err)
	}

	if _, err := UnlockKeystore(ks, "wrong-passphrase"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("Expected ErrWrongPassphrase, got %v", err)
	}
}

func TestCreateKeystoreValidation(t *testing.T) {
	if _, err := CreateKeystore("", testKey(), ""); !errors.Is(err, ErrEmptyPassphrase) {
		t.Errorf("Expected ErrEmptyPassphrase, got %v", err)
	}
	if _, err := CreateKeystore("passphrase", []byte{1, 2, 3}, ""); err == nil {
		t.Error("Expected error for short private key")
	}
}

func TestSaveAndLoadKeystore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev-identity.json")

	ks, err := CreateKeystore("passphrase", testKey(), "0xabc")
	if err != nil {
		t.Fatalf("Failed to create keystore: %v", err)
	}
	if err := SaveKeystore(ks, path); err != nil {
		t.Fatalf("Failed to save keystore: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat keystore: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected permissions 0600, got %o", info.Mode().Perm())
	}

	loaded, err := LoadKeystore(path)
	if err != nil {
		t.Fatalf("Failed to load keystore: %v", err)
	}
	if loaded.Address != "0xabc" {
		t.Errorf("Expected address 0xabc, got %s", loaded.Address)
	}

	data, err := UnlockKeystore(loaded, "passphrase")
	if err != nil {
		t.Fatalf("Failed to unlock loaded keystore: %v", err)
	}
	if !bytes.Equal(data.PrivateKey, testKey()) {
		t.Error("Private key mismatch after reload")
	}
}
