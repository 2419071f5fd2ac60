package cmd

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/crypto"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/crypto/keystore"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/database"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/envelope"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/identity"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/keys"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/session"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const maxPinAttempts = 3

var (
	passphraseFile string
	showQR         bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Create, unlock and inspect the wallet",
	Long: `Create, unlock and inspect the multi-chain wallet.

The identity keystore signs a PIN-bound message; the signature seeds the EVM,
Solana and Fuel accounts. The PIN itself is stored only encrypted under a key
derived from that signature.`,
}

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a wallet protected by a new PIN",
	Long: `Sign in with the identity keystore and protect a new wallet with a 4-digit PIN.

Example:
  sentient-wallet wallet create`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPinFlow(cmd.Context(), session.PhaseCreatingPin)
	},
}

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the wallet with its PIN",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPinFlow(cmd.Context(), session.PhaseUnlockingPin)
	},
}

var walletAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the addresses of the last unlocked wallet",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewSQLiteManager(config, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		addresses, err := rememberedAddresses(db)
		if err != nil {
			return err
		}
		if addresses.EVM == "" && addresses.Solana == "" && addresses.Fuel == "" {
			fmt.Println("No wallet unlocked yet. Run 'sentient-wallet wallet unlock' first.")
			return nil
		}

		printAddresses(addresses)
		if showQR {
			for _, entry := range []struct{ label, address string }{
				{"EVM", addresses.EVM},
				{"Solana", addresses.Solana},
				{"Fuel", addresses.Fuel},
			} {
				if entry.address == "" {
					continue
				}
				qr, err := qrcode.New(entry.address, qrcode.Medium)
				if err != nil {
					return fmt.Errorf("failed to create QR code: %w", err)
				}
				fmt.Printf("\n%s\n%s", entry.label, qr.ToString(false))
			}
		}
		return nil
	},
}

var walletSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and forget the remembered addresses",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewSQLiteManager(config, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := forgetAddresses(db); err != nil {
			return err
		}

		logger.Info("Wallet signed out", "cli")
		fmt.Println("✓ Signed out")
		return nil
	},
}

// runPinFlow signs in with the dev identity and creates or unlocks the wallet.
// want is the phase the command expects after sign-in.
func runPinFlow(ctx context.Context, want session.Phase) error {
	flow, closer, err := openFlow(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := database.NewSQLiteManager(config, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	flow.State().OnChange(recordAddresses(db, logger))

	if err := flow.SignIn(ctx); err != nil {
		return err
	}

	switch phase := flow.Phase(); {
	case phase == session.PhaseUnlockingPin && want == session.PhaseCreatingPin:
		return fmt.Errorf("a wallet already exists for this identity, use 'sentient-wallet wallet unlock'")
	case phase == session.PhaseCreatingPin && want == session.PhaseUnlockingPin:
		return fmt.Errorf("no wallet exists for this identity yet, use 'sentient-wallet wallet create'")
	case phase != want:
		return fmt.Errorf("unexpected sign-in state %s", phase)
	}

	var result session.Result
	for attempt := 1; attempt <= maxPinAttempts; attempt++ {
		pin, err := promptPin(want == session.PhaseCreatingPin)
		if err != nil {
			return err
		}

		result = flow.SubmitPin(ctx, pin)
		if result.OK() {
			break
		}
		logger.Warn(fmt.Sprintf("PIN attempt %d failed: %s", attempt, result.String()), "cli")
		fmt.Printf("❌ %s\n", result.UserMessage())
	}
	if !result.OK() {
		return fmt.Errorf("wallet not unlocked after %d attempts", maxPinAttempts)
	}

	fmt.Println()
	if result.Created {
		fmt.Println("✓ Wallet created successfully")
	} else {
		fmt.Println("✓ Wallet unlocked")
	}
	printAddresses(result.Addresses)
	return nil
}

func openFlow(ctx context.Context) (*session.Flow, io.Closer, error) {
	paths := utils.GetAppPaths("")
	keystorePath := paths.GetDataPath(config.GetConfigWithDefault("dev_keystore_file", "dev-identity.json"))

	provider, err := identity.LoadDevProvider(keystorePath, keystore.ConfiguredPassphrase(config, passphraseFile))
	if err != nil {
		return nil, nil, err
	}

	store, closer, err := envelope.Open(ctx, config, logger)
	if err != nil {
		return nil, nil, err
	}

	return session.NewFlow(provider, store, session.NewState(), logger), closer, nil
}

// promptPin reads a PIN from the terminal without echo
func promptPin(confirm bool) (string, error) {
	for {
		fmt.Printf("Enter %d-digit PIN: ", crypto.PinLength)
		first, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read PIN: %v", err)
		}
		if !confirm {
			return string(first), nil
		}

		fmt.Print("Confirm PIN: ")
		second, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read PIN confirmation: %v", err)
		}
		if string(first) == string(second) {
			return string(first), nil
		}
		fmt.Println("❌ PINs do not match. Please try again.")
	}
}

// settingsWriter is satisfied by *database.SQLiteManager
type settingsWriter interface {
	SetSetting(key string, value string) error
	DeleteSetting(key string) error
}

var addressSettings = []string{
	database.SettingLastEvmAddress,
	database.SettingLastSolanaAddress,
	database.SettingLastFuelAddress,
}

// recordAddresses keeps the remembered addresses in step with the session
// state: an unlock stores them, a sign-out forgets them
func recordAddresses(settings settingsWriter, lm *utils.LogsManager) func(*keys.Bundle) {
	return func(bundle *keys.Bundle) {
		var err error
		if bundle == nil {
			err = forgetAddresses(settings)
		} else {
			err = storeAddresses(settings, bundle.Addresses())
		}
		if err != nil {
			lm.Warn(fmt.Sprintf("Failed to update remembered addresses: %v", err), "cli")
		}
	}
}

func storeAddresses(settings settingsWriter, addresses keys.Addresses) error {
	values := []string{addresses.EVM, addresses.Solana, addresses.Fuel}
	for i, key := range addressSettings {
		if err := settings.SetSetting(key, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func forgetAddresses(settings settingsWriter) error {
	for _, key := range addressSettings {
		if err := settings.DeleteSetting(key); err != nil {
			return err
		}
	}
	return nil
}

func rememberedAddresses(db *database.SQLiteManager) (keys.Addresses, error) {
	var addresses keys.Addresses
	var err error
	if addresses.EVM, err = db.GetSetting(database.SettingLastEvmAddress); err != nil {
		return addresses, err
	}
	if addresses.Solana, err = db.GetSetting(database.SettingLastSolanaAddress); err != nil {
		return addresses, err
	}
	if addresses.Fuel, err = db.GetSetting(database.SettingLastFuelAddress); err != nil {
		return addresses, err
	}
	return addresses, nil
}

func printAddresses(addresses keys.Addresses) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("EVM:     %s\n", addresses.EVM)
	fmt.Printf("Solana:  %s\n", addresses.Solana)
	fmt.Printf("Fuel:    %s\n", addresses.Fuel)
}

func init() {
	walletCmd.PersistentFlags().StringVar(&passphraseFile, "passphrase-file", "", "file holding the identity keystore passphrase")
	walletAddressCmd.Flags().BoolVar(&showQR, "qr", false, "render each address as a terminal QR code")

	walletCmd.AddCommand(walletCreateCmd)
	walletCmd.AddCommand(walletUnlockCmd)
	walletCmd.AddCommand(walletAddressCmd)
	walletCmd.AddCommand(walletSignOutCmd)
	rootCmd.AddCommand(walletCmd)
}
