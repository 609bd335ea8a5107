package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/ration-ai/ration/pkg/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the OpenAI-compatible HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			d, err := buildDeps(cfg, path)
			if err != nil {
				return err
			}
			defer d.Close()

			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := d.local.Ping(pingCtx); err != nil {
				slog.Warn("local backend unreachable, prompts will fall back to paid",
					"base_url", cfg.LocalBaseURL, "error", err)
			}
			cancel()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg.Listen, d.gw, d.ledger, slog.Default())
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config)")
	return cmd
}
