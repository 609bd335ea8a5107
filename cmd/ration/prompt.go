package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ration-ai/ration/pkg/models"
	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	var (
		configPath string
		backendArg string
	)

	cmd := &cobra.Command{
		Use:   "prompt <text>...",
		Short: "Route a prompt and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forced, err := models.ParseBackend(backendArg)
			if err != nil {
				return err
			}

			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			d, err := buildDeps(cfg, path)
			if err != nil {
				return err
			}
			defer d.Close()

			res, err := d.gw.Route(context.Background(), strings.Join(args, " "), forced)
			if err != nil {
				return err
			}

			marker := ""
			if res.Fallback {
				marker = " (fallback)"
			}
			fmt.Printf("[%s] %s%s\n\n", res.Backend, res.Reason, marker)
			fmt.Println(res.Text)
			fmt.Println()
			if res.Cost > 0 {
				fmt.Printf("Cost: $%.4f\n", res.Cost)
			}
			fmt.Printf("Budget remaining: $%.2f\n", res.Budget.Remaining)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&backendArg, "backend", "b", "", "force a backend (local or paid)")
	return cmd
}
