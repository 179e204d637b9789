package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "TradeHub storefront backend: orders, payments and back office",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Optional config file (yaml, json or toml); environment variables override it")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(configCmd(&configPath))
	rootCmd.AddCommand(invoiceCmd())

	return rootCmd
}
