package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Config holds all ration configuration. It is read-only after load
// except for the explicit setup flow, which mutates APIKey and saves.
type Config struct {
	APIKey             string   `json:"api_key"`
	LocalBaseURL       string   `json:"local_base_url"`
	LocalModel         string   `json:"local_model"`
	PaidModel          string   `json:"paid_model"`
	MonthlyBudget      float64  `json:"monthly_budget"`
	WarningThreshold   float64  `json:"warning_threshold"`
	LocalKeywords      []string `json:"local_keywords"`
	PaidKeywords       []string `json:"paid_keywords"`
	InputCostPerToken  float64  `json:"input_cost_per_token"`
	OutputCostPerToken float64  `json:"output_cost_per_token"`
	Listen             string   `json:"listen"`
}

// Default returns a Config with sensible defaults. Keyword lists bias
// everyday coding prompts to the free local backend and reserve the
// paid backend for design-level work.
func Default() *Config {
	return &Config{
		LocalBaseURL:     "http://localhost:11434",
		LocalModel:       "mistral",
		PaidModel:        "claude-sonnet-4-20250514",
		MonthlyBudget:    5.0,
		WarningThreshold: 4.0,
		LocalKeywords: []string{
			"code", "refactor", "test", "debug", "simple", "function",
			"fix", "error", "variable", "loop", "class",
		},
		PaidKeywords: []string{
			"architecture", "design", "system", "complex", "aspice",
			"compliance", "review", "analysis", "strategy", "planning",
		},
		InputCostPerToken:  0.000003,
		OutputCostPerToken: 0.000015,
		Listen:             ":8000",
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "ration", "config.json"), nil
}

// Load reads a JSON config file and expands environment variables.
// A missing file is created with defaults first, so the user has
// something to edit.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := json.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories. The
// file is user-only since it may carry the API credential.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Credential returns the paid API key, falling back to the environment
// when the config field is empty.
func (c *Config) Credential() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

func (c *Config) validate() error {
	if c.MonthlyBudget <= 0 {
		return fmt.Errorf("monthly_budget must be positive, got %v", c.MonthlyBudget)
	}
	if c.InputCostPerToken < 0 || c.OutputCostPerToken < 0 {
		return fmt.Errorf("token cost rates must be non-negative")
	}
	if c.LocalBaseURL == "" {
		return fmt.Errorf("local_base_url must be set")
	}
	return nil
}

// LedgerPath returns the budget ledger location, sibling to the config file.
func LedgerPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "ledger.json")
}

// JournalPath returns the usage journal location, sibling to the config file.
func JournalPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "usage.db")
}

// TasksPath returns the workflow template overrides location, sibling
// to the config file.
func TasksPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "tasks.yaml")
}
