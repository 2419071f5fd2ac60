package crypto

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	signatures := []string{"0xsig-a", "0x" + strings.Repeat("f", 130), "π-signature"}

	for _, sig := range signatures {
		for i := 0; i < 10000; i += 101 {
			pin := fmt.Sprintf("%04d", i)

			ciphertext, iv, err := EncryptPin(pin, sig)
			if err != nil {
				t.Fatalf("Failed to encrypt pin %s: %v", pin, err)
			}

			decrypted, err := DecryptPin(ciphertext, iv, sig)
			if err != nil {
				t.Fatalf("Failed to decrypt pin %s: %v", pin, err)
			}
			if decrypted != pin {
				t.Errorf("Expected %s, got %s", pin, decrypted)
			}
		}
	}
}

func TestDecryptWithWrongSignatureFails(t *testing.T) {
	pairs := [][2]string{
		{"sig-a", "sig-b"},
		{"0xabc", "0xabd"},
		{"signature", "Signature"},
	}

	for _, pair := range pairs {
		ciphertext, iv, err := EncryptPin("1234", pair[0])
		if err != nil {
			t.Fatalf("Failed to encrypt: %v", err)
		}

		if _, err := DecryptPin(ciphertext, iv, pair[1]); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("Expected ErrDecryptionFailed for %q vs %q, got %v", pair[0], pair[1], err)
		}
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	ct1, iv1, err := EncryptPin("1234", "sig")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	ct2, iv2, err := EncryptPin("1234", "sig")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	if iv1 == iv2 {
		t.Error("Expected different IVs for repeated encryption")
	}
	if ct1 == ct2 {
		t.Error("Expected different ciphertexts for repeated encryption")
	}
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	ciphertext, iv, err := EncryptPin("1234", "sig")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	cases := map[string][2]string{
		"bad ciphertext": {"%%%", iv},
		"bad iv":         {ciphertext, "%%%"},
		"short iv":       {ciphertext, "AAAA"},
	}

	for name, c := range cases {
		if _, err := DecryptPin(c[0], c[1], "sig"); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("%s: expected ErrDecryptionFailed, got %v", name, err)
		}
	}
}

func TestValidatePin(t *testing.T) {
	valid := []string{"0000", "1234", "9999"}
	invalid := []string{"", "123", "12345", "12a4", "١٢٣٤", " 123"}

	for _, pin := range valid {
		if err := ValidatePin(pin); err != nil {
			t.Errorf("Expected %q to be valid, got %v", pin, err)
		}
	}
	for _, pin := range invalid {
		if err := ValidatePin(pin); !errors.Is(err, ErrInvalidPinFormat) {
			t.Errorf("Expected %q to be rejected, got %v", pin, err)
		}
	}
}

func TestPinBindingMessage(t *testing.T) {
	msg := PinBindingMessage("0xA1", "1234")

	if !strings.HasPrefix(msg, "Wallet Access ― 0x") {
		t.Errorf("Unexpected message prefix: %s", msg)
	}
	fingerprint := strings.TrimPrefix(msg, "Wallet Access ― ")
	if len(fingerprint) != 18 {
		t.Errorf("Expected 18 character fingerprint, got %d (%s)", len(fingerprint), fingerprint)
	}

	if msg != PinBindingMessage("0xA1", "1234") {
		t.Error("Expected message to be deterministic")
	}
	if msg == PinBindingMessage("0xA1", "4321") {
		t.Error("Expected message to depend on the pin")
	}
	if msg == PinBindingMessage("0xB2", "1234") {
		t.Error("Expected message to depend on the address")
	}
}
