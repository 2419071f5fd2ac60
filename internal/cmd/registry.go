package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/registry"
)

var registryOutput string

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "List the supported chains and tokens",
}

var registryChainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains with their effective RPC endpoints",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.Default().WithRPCOverrides(config)
		return writeStructured(os.Stdout, registryOutput, reg.ListChains())
	},
}

var registryTokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List supported tokens and their deployments",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeStructured(os.Stdout, registryOutput, registry.Default().ListTokens())
	},
}

func init() {
	registryCmd.PersistentFlags().StringVarP(&registryOutput, "output", "o", "yaml", "output format: yaml or json")

	registryCmd.AddCommand(registryChainsCmd)
	registryCmd.AddCommand(registryTokensCmd)
	rootCmd.AddCommand(registryCmd)
}
