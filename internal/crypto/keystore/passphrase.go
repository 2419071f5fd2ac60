package keystore

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

// PassphraseSource supplies the keystore passphrase. confirm is set when a new
// keystore is about to be written.
type PassphraseSource func(confirm bool) (string, error)

// ConfiguredPassphrase returns the passphrase from config, the passphrase file
// or, as a last resort, an interactive terminal prompt.
func ConfiguredPassphrase(config *utils.ConfigManager, passphraseFile string) PassphraseSource {
	return func(confirm bool) (string, error) {
		if config != nil {
			if passphrase, exists := config.GetConfig("keystore_passphrase"); exists && passphrase != "" {
				return passphrase, nil
			}
		}

		if passphraseFile != "" {
			data, err := os.ReadFile(passphraseFile)
			if err != nil {
				return "", fmt.Errorf("failed to read passphrase file: %v", err)
			}
			return strings.TrimSpace(string(data)), nil
		}

		return PromptPassphrase(confirm)
	}
}

// PromptPassphrase reads a passphrase from the terminal without echo
func PromptPassphrase(confirm bool) (string, error) {
	for {
		fmt.Print("Enter identity keystore passphrase: ")
		first, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase: %v", err)
		}
		if len(first) == 0 {
			return "", ErrEmptyPassphrase
		}
		if !confirm {
			return string(first), nil
		}

		fmt.Print("Confirm passphrase: ")
		second, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase confirmation: %v", err)
		}
		if string(first) == string(second) {
			return string(first), nil
		}
		fmt.Println("❌ Passphrases do not match. Please try again.")
	}
}
