package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MonthlyBudget != 5.0 {
		t.Errorf("expected 5.0 budget, got %v", cfg.MonthlyBudget)
	}
	if cfg.LocalBaseURL != "http://localhost:11434" {
		t.Errorf("unexpected local URL: %s", cfg.LocalBaseURL)
	}
	if len(cfg.LocalKeywords) == 0 || len(cfg.PaidKeywords) == 0 {
		t.Error("expected default keyword lists")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_API_KEY", "sk-test-123")

	content := `{
  "api_key": "${TEST_API_KEY}",
  "local_base_url": "http://127.0.0.1:9999",
  "monthly_budget": 10.0,
  "local_keywords": ["quick"]
}`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIKey != "sk-test-123" {
		t.Errorf("env var not expanded: got %s", cfg.APIKey)
	}
	if cfg.MonthlyBudget != 10.0 {
		t.Errorf("expected 10.0 budget, got %v", cfg.MonthlyBudget)
	}
	if len(cfg.LocalKeywords) != 1 || cfg.LocalKeywords[0] != "quick" {
		t.Errorf("keyword override not applied: %v", cfg.LocalKeywords)
	}
	// Fields absent from the file keep their defaults.
	if cfg.PaidModel != "claude-sonnet-4-20250514" {
		t.Errorf("expected default paid model, got %s", cfg.PaidModel)
	}
	if cfg.WarningThreshold != 4.0 {
		t.Errorf("expected default warning threshold, got %v", cfg.WarningThreshold)
	}
}

func TestLoadMissingCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ration", "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MonthlyBudget != 5.0 {
		t.Errorf("expected default budget, got %v", cfg.MonthlyBudget)
	}

	// The file must now exist and load back identically.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.MonthlyBudget != cfg.MonthlyBudget || again.PaidModel != cfg.PaidModel {
		t.Error("reloaded config differs from defaults")
	}
}

func TestLoadInvalidBudget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"monthly_budget": -1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative budget")
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestCredentialFallsBackToEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-env")

	cfg := Default()
	if got := cfg.Credential(); got != "sk-env" {
		t.Errorf("expected env credential, got %q", got)
	}

	cfg.APIKey = "sk-file"
	if got := cfg.Credential(); got != "sk-file" {
		t.Errorf("config key should win, got %q", got)
	}
}

func TestSiblingPaths(t *testing.T) {
	got := LedgerPath("/home/u/.config/ration/config.json")
	if got != "/home/u/.config/ration/ledger.json" {
		t.Errorf("unexpected ledger path: %s", got)
	}
	got = JournalPath("/home/u/.config/ration/config.json")
	if got != "/home/u/.config/ration/usage.db" {
		t.Errorf("unexpected journal path: %s", got)
	}
	got = TasksPath("/home/u/.config/ration/config.json")
	if got != "/home/u/.config/ration/tasks.yaml" {
		t.Errorf("unexpected tasks path: %s", got)
	}
}
