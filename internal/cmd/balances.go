package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/aggregator"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/balances"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/database"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/prices"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/workers"
)

var (
	evmAddress     string
	solanaAddress  string
	fuelAddress    string
	balancesOutput string
	nonZeroOnly    bool
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Fetch and price the wallet's balances on every supported chain",
	Long: `Fetch token balances on World Chain, Base, Arbitrum, Optimism, Solana and Fuel,
price them in USD and print the per-token totals.

Addresses default to the last unlocked wallet.

Example:
  sentient-wallet balances --evm 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 --nonzero`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := resolveWallets()
		if err != nil {
			return err
		}
		if wallets.Empty() {
			return fmt.Errorf("no addresses given and no wallet unlocked yet")
		}

		backend := newBackend(cmd.Context())
		defer backend.Close()

		snapshot := backend.aggregator.Snapshot(cmd.Context(), wallets)
		groups := snapshot.Groups
		if nonZeroOnly {
			groups = snapshot.NonZero()
		}

		switch balancesOutput {
		case "table":
			printGroups(groups, snapshot.TotalUSDValue())
			return nil
		default:
			// round-trip through JSON so big.Int balances keep their decimal form
			data, err := json.Marshal(groups)
			if err != nil {
				return err
			}
			var plain interface{}
			if err := json.Unmarshal(data, &plain); err != nil {
				return err
			}
			return writeStructured(os.Stdout, balancesOutput, plain)
		}
	},
}

// backend holds the balance, price and aggregation services shared by the
// balances and serve commands
type backend struct {
	pool       *workers.WorkerPool
	balances   *balances.Service
	prices     *prices.Client
	aggregator *aggregator.Aggregator
}

func newBackend(ctx context.Context) *backend {
	pool := workers.NewWorkerPool(ctx, config.GetConfigInt("fetch_workers", 6, 1, 64), logger)
	pool.Start()

	reg := registry.Default().WithRPCOverrides(config)
	balanceService := balances.NewService(reg, pool, logger)
	priceClient := prices.NewClientFromConfig(config, reg, logger)

	return &backend{
		pool:       pool,
		balances:   balanceService,
		prices:     priceClient,
		aggregator: aggregator.New(balanceService, priceClient, logger),
	}
}

func (b *backend) Close() {
	b.balances.Close()
	b.pool.Stop()
}

// resolveWallets prefers the address flags and falls back to the addresses
// remembered by the last unlock
func resolveWallets() (balances.Wallets, error) {
	wallets := balances.Wallets{EVM: evmAddress, Solana: solanaAddress, Fuel: fuelAddress}
	if !wallets.Empty() {
		return wallets, nil
	}

	db, err := database.NewSQLiteManager(config, logger)
	if err != nil {
		return wallets, err
	}
	defer db.Close()

	addresses, err := rememberedAddresses(db)
	if err != nil {
		return wallets, err
	}
	return balances.WalletsFromAddresses(addresses), nil
}

func printGroups(groups []aggregator.Group, total float64) {
	fmt.Printf("%-8s %-28s %14s\n", "TOKEN", "BALANCE", "USD")
	for _, group := range groups {
		fmt.Printf("%-8s %-28s %14.2f\n", group.Symbol, group.TotalBalance, group.TotalUSDValue)
		for _, row := range group.Rows {
			fmt.Printf("  %-6s %-28s %14.2f\n", row.ChainID, row.FormattedBalance, row.USDValue)
		}
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-37s %14.2f\n", "TOTAL", total)
}

func addWalletFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&evmAddress, "evm", "", "EVM address (World Chain, Base, Arbitrum, Optimism)")
	cmd.Flags().StringVar(&solanaAddress, "sol", "", "Solana address")
	cmd.Flags().StringVar(&fuelAddress, "fuel", "", "Fuel address")
}

func init() {
	addWalletFlags(balancesCmd)
	balancesCmd.Flags().StringVarP(&balancesOutput, "output", "o", "table", "output format: table, json or yaml")
	balancesCmd.Flags().BoolVar(&nonZeroOnly, "nonzero", false, "hide tokens with a zero balance")
	rootCmd.AddCommand(balancesCmd)
}
