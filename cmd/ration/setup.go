package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ration-ai/ration/pkg/backend"
	"github.com/ration-ai/ration/pkg/budget"
	"github.com/ration-ai/ration/pkg/config"
	"github.com/spf13/cobra"
)

const testPrompt = "Hello, test message"

func newSetupCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "setup [api-key]",
		Short: "Write the config file and test both backends",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.APIKey = args[0]
				if err := cfg.Save(path); err != nil {
					return err
				}
			}
			fmt.Printf("Config: %s\n\n", path)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			local := backend.NewLocal(cfg.LocalBaseURL, cfg.LocalModel)
			if _, err := local.Generate(ctx, testPrompt); err != nil {
				fmt.Printf("local backend (%s): FAILED: %v\n", cfg.LocalModel, err)
			} else {
				fmt.Printf("local backend (%s): ok\n", cfg.LocalModel)
			}

			if cfg.Credential() == "" {
				fmt.Println("paid backend: skipped, no API key configured")
				fmt.Println("  set one with: ration setup <api-key>")
				return nil
			}

			// The paid round trip spends real money, so it goes through
			// the ledger like any other request.
			ledger := budget.NewFileLedger(config.LedgerPath(path), cfg.MonthlyBudget)
			paid := backend.NewPaid(cfg.Credential(), cfg.PaidModel, backend.Rates{
				Input:  cfg.InputCostPerToken,
				Output: cfg.OutputCostPerToken,
			}, ledger)
			reply, err := paid.Generate(ctx, testPrompt)
			if err != nil {
				fmt.Printf("paid backend (%s): FAILED: %v\n", cfg.PaidModel, err)
				return nil
			}
			fmt.Printf("paid backend (%s): ok, cost $%.4f\n", cfg.PaidModel, reply.Cost)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
