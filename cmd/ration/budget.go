package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ration-ai/ration/pkg/budget"
	"github.com/ration-ai/ration/pkg/config"
	"github.com/spf13/cobra"
)

func newBudgetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show budget status for the current month",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			ledger := budget.NewFileLedger(config.LedgerPath(path), cfg.MonthlyBudget)
			snap, err := ledger.Status()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MONTH\tSPENT\tBUDGET\tREMAINING\tREQUESTS")
			fmt.Fprintf(w, "%s\t$%.2f\t$%.2f\t$%.2f\t%d\n",
				snap.Month, snap.Spent, snap.Budget, snap.Remaining, snap.Requests)
			if err := w.Flush(); err != nil {
				return err
			}

			if snap.Spent >= cfg.WarningThreshold {
				fmt.Printf("\nWarning: $%.2f of the $%.2f budget is spent.\n", snap.Spent, snap.Budget)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
