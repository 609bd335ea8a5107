package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	var verbose bool

	root := &cobra.Command{
		Use:     "ration",
		Short:   "Ration — budget-capped router between a local model and a paid LLM API",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newPromptCmd(),
		newServeCmd(),
		newProcessCmd(),
		newBudgetCmd(),
		newStatsCmd(),
		newSetupCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
