package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

var (
	configPath string
	logLevel   string
	config     *utils.ConfigManager
	logger     *utils.LogsManager
)

var rootCmd = &cobra.Command{
	Use:   "sentient-wallet",
	Short: "Sentient multi-chain wallet",
	Long: `A multi-chain wallet that derives EVM, Solana and Fuel accounts from a
signature of its identity provider, protected by a 4-digit PIN.

Balances are read from World Chain, Base, Arbitrum, Optimism, Solana and Fuel,
priced in USD and served to local clients over HTTP and WebSocket.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize configuration
		config = utils.NewConfigManager(configPath)

		// Initialize logging
		logger = utils.NewLogsManager(config)
		applyLogLevel(logger, logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Cleanup
		if logger != nil {
			logger.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

// applyLogLevel overrides the configured level when the flag is set
func applyLogLevel(lm *utils.LogsManager, level string) {
	if level == "" {
		return
	}
	if err := lm.SetLogLevel(level); err != nil {
		lm.Warn(fmt.Sprintf("Keeping log level %s: %v", lm.GetLogLevel(), err), "cmd")
		return
	}
	lm.Debug(fmt.Sprintf("Log level set to %s", lm.GetLogLevel()), "cmd")
}
