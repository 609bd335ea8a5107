package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ration-ai/ration/pkg/backend"
	"github.com/ration-ai/ration/pkg/budget"
	"github.com/ration-ai/ration/pkg/config"
	"github.com/ration-ai/ration/pkg/gateway"
	"github.com/ration-ai/ration/pkg/router"
	"github.com/ration-ai/ration/pkg/tracker"
)

// resolveConfigPath picks the config file: the --config flag when set,
// then the RATION_CONFIG environment variable, then the per-user
// default location.
func resolveConfigPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if p := os.Getenv("RATION_CONFIG"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// loadConfig resolves and loads the config, returning the path it came
// from so callers can locate sibling files.
func loadConfig(flagPath string) (*config.Config, string, error) {
	path, err := resolveConfigPath(flagPath)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

// deps bundles the wired components behind the CLI commands.
type deps struct {
	ledger  *budget.FileLedger
	journal *tracker.SQLiteJournal
	local   *backend.Local
	gw      *gateway.Gateway
}

func buildDeps(cfg *config.Config, configPath string) (*deps, error) {
	ledger := budget.NewFileLedger(config.LedgerPath(configPath), cfg.MonthlyBudget)

	journal, err := tracker.New(config.JournalPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}

	local := backend.NewLocal(cfg.LocalBaseURL, cfg.LocalModel)
	paid := backend.NewPaid(cfg.Credential(), cfg.PaidModel, backend.Rates{
		Input:  cfg.InputCostPerToken,
		Output: cfg.OutputCostPerToken,
	}, ledger)

	rt := router.New(ledger, cfg.LocalKeywords, cfg.PaidKeywords)
	gw := gateway.New(rt, local, paid, ledger, journal, slog.Default())

	return &deps{ledger: ledger, journal: journal, local: local, gw: gw}, nil
}

func (d *deps) Close() {
	_ = d.journal.Close()
}
