package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ration-ai/ration/pkg/config"
	"github.com/ration-ai/ration/pkg/tracker"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		days       int
		last       int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show routed request statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			journal, err := tracker.New(config.JournalPath(path))
			if err != nil {
				return err
			}
			defer journal.Close()

			ctx := context.Background()

			// Recent request view
			if last > 0 {
				records, err := journal.Recent(ctx, last)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Println("No requests recorded.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tBACKEND\tREASON\tTOKENS\tCOST")
				for _, r := range records {
					backend := string(r.Backend)
					if r.Fallback {
						backend += " (fallback)"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t$%.4f\n",
						r.CreatedAt.Format("2006-01-02T15:04:05"), backend, r.Reason,
						r.InputTokens+r.OutputTokens, r.Cost)
				}
				return w.Flush()
			}

			// Default: per-backend summary
			var since time.Time
			if days > 0 {
				since = time.Now().UTC().AddDate(0, 0, -days)
			}
			summaries, err := journal.Summary(ctx, since)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No usage data found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BACKEND\tREQUESTS\tINPUT TOKENS\tOUTPUT TOKENS\tCOST")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t$%.4f\n",
					s.Backend, s.Requests, s.InputTokens, s.OutputTokens, s.Cost)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().IntVar(&days, "days", 30, "summarize the last N days (0 for all time)")
	cmd.Flags().IntVar(&last, "last", 0, "list the last N requests instead of the summary")
	return cmd
}
