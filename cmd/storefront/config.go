package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/tradehub/internal/config"
)

func configCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}
	cmd.AddCommand(configCheckCmd(configPath))
	return cmd
}

func configCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "addr:          %s\n", cfg.Server.Addr)
			fmt.Fprintf(out, "payment mode:  %s\n", cfg.Payment.Mode)
			fmt.Fprintf(out, "gateway url:   %s\n", cfg.Payment.APIURL)
			fmt.Fprintf(out, "audit store:   %s\n", orDefault(cfg.Storage.SQLitePath, "memory"))
			fmt.Fprintf(out, "replay cache:  %s\n", orDefault(cfg.Storage.RedisAddr, "memory"))

			problems := cfg.Problems()
			if len(problems) == 0 {
				fmt.Fprintln(out, "configuration OK")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			return fmt.Errorf("configuration has %d problem(s)", len(problems))
		},
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
