package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/aggregator"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/api"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/events"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/onramp"
)

var envFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve balances, prices and on-ramp sessions to local clients",
	Long: `Start the local wallet API.

This will:
- Serve balances, prices and priced assets over HTTP
- Poll balances and prices for the wallet and push snapshots over WebSocket
- Publish changed snapshots to Kafka when kafka_brokers is set
- Proxy Coinbase on-ramp requests when CDP_KEY_ID and CDP_SECRET are set`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Starting Sentient Wallet API...", "cli")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		backend := newBackend(ctx)
		defer backend.Close()

		poller := aggregator.NewPoller(backend.aggregator, config, logger)

		var envFiles []string
		if envFile != "" {
			envFiles = append(envFiles, envFile)
		}
		onrampConfig, err := onramp.LoadConfig(envFiles...)
		if err != nil {
			return err
		}
		onrampConfig.ApplyOverrides(config)
		onrampClient := onramp.NewClient(*onrampConfig, logger)
		if !onrampClient.Enabled() {
			logger.Warn("CDP credentials not set, on-ramp endpoints are disabled", "cli")
		}

		server := api.NewAPIServer(config, logger, api.Services{
			Balances: backend.balances,
			Prices:   backend.prices,
			Poller:   poller,
			Onramp:   onrampClient,
		})

		publisher := events.NewPublisher(config, logger)
		events.NewEmitter(server.Hub(), publisher, logger).Attach(poller)

		if err := server.Start(); err != nil {
			publisher.Close()
			return err
		}

		wallets, err := resolveWallets()
		if err != nil {
			logger.Warn(fmt.Sprintf("Failed to read remembered addresses: %v", err), "cli")
		}
		if wallets.Empty() {
			logger.Info("No wallet to poll yet, waiting for a wallets.watch message", "cli")
		}
		poller.Start(ctx, wallets)

		fmt.Printf("Sentient Wallet API listening on port %s. Press Ctrl+C to stop.\n", server.GetPort())

		// Setup signal handling for graceful shutdown
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutdown signal received, stopping API...", "cli")

		poller.Stop()
		if err := server.Stop(); err != nil {
			logger.Error(fmt.Sprintf("Error stopping API server: %v", err), "cli")
		}
		if err := publisher.Close(); err != nil {
			logger.Warn(fmt.Sprintf("Error closing event publisher: %v", err), "cli")
		}

		logger.Info("Sentient Wallet API stopped successfully", "cli")
		return nil
	},
}

func init() {
	addWalletFlags(serveCmd)
	serveCmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file with CDP_KEY_ID and CDP_SECRET (default ./.env)")
	rootCmd.AddCommand(serveCmd)
}
