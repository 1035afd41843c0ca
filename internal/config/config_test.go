package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// Helper to clear all config-related env vars
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"CARTFILL_PORT",
		"CARTFILL_READ_TIMEOUT",
		"CARTFILL_WRITE_TIMEOUT",
		"CARTFILL_SHUTDOWN_TIMEOUT",
		"CARTFILL_DB_PATH",
		"CARTFILL_CATALOG_SOURCE",
		"CARTFILL_CATALOG_URL",
		"CARTFILL_PRODUCTS_PER_PAGE",
		"CARTFILL_SNAPSHOT_PATH",
		"OPENAI_API_KEY",
		"CARTFILL_MODEL",
		"CARTFILL_FIXTURES_DIR",
		"CARTFILL_TOP_N",
		"CARTFILL_MIN_SCORE",
		"CARTFILL_ENRICH_WORKERS",
		"CARTFILL_RETRY_MAX_ATTEMPTS",
		"CARTFILL_RETRY_MIN_WAIT",
		"CARTFILL_RETRY_MAX_WAIT",
		"CARTFILL_LOG_LEVEL",
		"CARTFILL_LOG_FORMAT",
		"CARTFILL_CONFIG_PATH",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

// dur converts Duration to time.Duration for comparison
func dur(d Duration) time.Duration {
	return time.Duration(d)
}

// Test: Default values when no config file and no env vars
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("CARTFILL_CONFIG_PATH", "/nonexistent/config.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if dur(cfg.Server.ShutdownTimeout) != 15*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 15s", cfg.Server.ShutdownTimeout)
	}

	// Database defaults
	if cfg.Database.Path != "data/cartfill.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "data/cartfill.db")
	}

	// Catalog defaults
	if cfg.Catalog.Source != "live" {
		t.Errorf("Catalog.Source = %q, want %q", cfg.Catalog.Source, "live")
	}
	if cfg.Catalog.ProductsPerPage != 50 {
		t.Errorf("Catalog.ProductsPerPage = %d, want 50", cfg.Catalog.ProductsPerPage)
	}

	// Model defaults
	if cfg.Model.Name != "gpt-4o-mini" {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, "gpt-4o-mini")
	}
	if cfg.Model.APIKey != "" {
		t.Errorf("Model.APIKey = %q, want empty", cfg.Model.APIKey)
	}

	// Pipeline defaults
	if cfg.Pipeline.TopN != 5 {
		t.Errorf("Pipeline.TopN = %d, want 5", cfg.Pipeline.TopN)
	}
	if cfg.Pipeline.MinScore != 60 {
		t.Errorf("Pipeline.MinScore = %d, want 60", cfg.Pipeline.MinScore)
	}
	if cfg.Pipeline.EnrichWorkers != 4 {
		t.Errorf("Pipeline.EnrichWorkers = %d, want 4", cfg.Pipeline.EnrichWorkers)
	}

	// Retry defaults
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("Retry.MaxAttempts = %d, want 5", cfg.Retry.MaxAttempts)
	}
	if dur(cfg.Retry.MinWait) != 250*time.Millisecond {
		t.Errorf("Retry.MinWait = %v, want 250ms", cfg.Retry.MinWait)
	}
	if dur(cfg.Retry.MaxWait) != 10*time.Second {
		t.Errorf("Retry.MaxWait = %v, want 10s", cfg.Retry.MaxWait)
	}

	// Log defaults
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
}

// Test: Missing API key is not a validation error (mocked mode)
func TestLoad_MissingAPIKeyAllowed(t *testing.T) {
	clearEnv(t)
	os.Setenv("CARTFILL_CONFIG_PATH", "/nonexistent/config.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error without API key, got: %v", err)
	}
	if cfg.Model.APIKey != "" {
		t.Errorf("Model.APIKey = %q, want empty", cfg.Model.APIKey)
	}
}

// Test: Environment variables override defaults
func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("CARTFILL_CONFIG_PATH", "/nonexistent/config.yaml")

	os.Setenv("CARTFILL_PORT", "9090")
	os.Setenv("CARTFILL_DB_PATH", "/custom/path.db")
	os.Setenv("CARTFILL_CATALOG_SOURCE", "snapshot")
	os.Setenv("CARTFILL_CATALOG_URL", "http://catalog.internal:8081")
	os.Setenv("OPENAI_API_KEY", "sk-test-key")
	os.Setenv("CARTFILL_MODEL", "gpt-4o")
	os.Setenv("CARTFILL_TOP_N", "8")
	os.Setenv("CARTFILL_RETRY_MAX_ATTEMPTS", "3")
	os.Setenv("CARTFILL_RETRY_MIN_WAIT", "100ms")
	os.Setenv("CARTFILL_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.Catalog.Source != "snapshot" {
		t.Errorf("Catalog.Source = %q, want %q", cfg.Catalog.Source, "snapshot")
	}
	if cfg.Catalog.BaseURL != "http://catalog.internal:8081" {
		t.Errorf("Catalog.BaseURL = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Model.APIKey != "sk-test-key" {
		t.Errorf("Model.APIKey = %q, want %q", cfg.Model.APIKey, "sk-test-key")
	}
	if cfg.Model.Name != "gpt-4o" {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, "gpt-4o")
	}
	if cfg.Pipeline.TopN != 8 {
		t.Errorf("Pipeline.TopN = %d, want 8", cfg.Pipeline.TopN)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Retry.MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
	if dur(cfg.Retry.MinWait) != 100*time.Millisecond {
		t.Errorf("Retry.MinWait = %v, want 100ms", cfg.Retry.MinWait)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

// Test: YAML file loading
func TestLoadFromFile_ValidYAML(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yamlContent := `
server:
  port: 9999
  read_timeout: 60s
catalog:
  source: snapshot
  snapshot_path: /data/catalog.json
pipeline:
  top_n: 10
  min_score: 75
retry:
  max_attempts: 2
  min_wait: 500ms
  max_wait: 5s
log:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 60*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 60s", cfg.Server.ReadTimeout)
	}
	if cfg.Catalog.Source != "snapshot" {
		t.Errorf("Catalog.Source = %q, want %q", cfg.Catalog.Source, "snapshot")
	}
	if cfg.Catalog.SnapshotPath != "/data/catalog.json" {
		t.Errorf("Catalog.SnapshotPath = %q", cfg.Catalog.SnapshotPath)
	}
	if cfg.Pipeline.TopN != 10 {
		t.Errorf("Pipeline.TopN = %d, want 10", cfg.Pipeline.TopN)
	}
	if cfg.Pipeline.MinScore != 75 {
		t.Errorf("Pipeline.MinScore = %d, want 75", cfg.Pipeline.MinScore)
	}
	if dur(cfg.Retry.MinWait) != 500*time.Millisecond {
		t.Errorf("Retry.MinWait = %v, want 500ms", cfg.Retry.MinWait)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
}

// Test: Env vars override YAML values
func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yamlContent := `
server:
  port: 9000
log:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	os.Setenv("CARTFILL_CONFIG_PATH", configPath)
	os.Setenv("CARTFILL_PORT", "8888") // Should override YAML

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Env should win over YAML
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888 (env override)", cfg.Server.Port)
	}
	// YAML value should still apply where no env override
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q (from YAML)", cfg.Log.Level, "warn")
	}
}

// Test: Invalid YAML returns error
func TestLoadFromFile_InvalidYAML(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")
	invalidYAML := `
server:
  port: not_a_number
  this is invalid yaml [
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("LoadFromFile() expected error for invalid YAML, got nil")
	}
}

// Test: Missing config file is NOT an error (uses defaults)
func TestLoad_MissingConfigFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("CARTFILL_CONFIG_PATH", "/nonexistent/path/config.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file, got: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (default)", cfg.Server.Port)
	}
}

// Test: Invalid duration string returns error
func TestLoadFromFile_InvalidDuration(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_duration.yaml")
	yamlContent := `
retry:
  min_wait: not_a_duration
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("LoadFromFile() expected error for invalid duration, got nil")
	}
}

// Test: Validation rejects bad values
func TestLoadFromFile_ValidationErrors(t *testing.T) {
	clearEnv(t)

	cases := []struct {
		name string
		yaml string
	}{
		{"bad catalog source", "catalog:\n  source: ftp\n"},
		{"zero products per page", "catalog:\n  products_per_page: 0\n"},
		{"zero top_n", "pipeline:\n  top_n: 0\n"},
		{"min_score above 100", "pipeline:\n  min_score: 101\n"},
		{"zero enrich workers", "pipeline:\n  enrich_workers: 0\n"},
		{"zero retry attempts", "retry:\n  max_attempts: 0\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tc.yaml), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}

			if _, err := LoadFromFile(configPath); err == nil {
				t.Error("LoadFromFile() expected validation error, got nil")
			}
		})
	}
}

// Test: API key is not serializable via YAML tag
func TestConfig_SecretsNotInYAML(t *testing.T) {
	cfg := &Config{
		Model: ModelConfig{APIKey: "secret-key", Name: "test"},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}

	if strings.Contains(string(data), "secret-key") {
		t.Errorf("YAML contains Model.APIKey secret: %s", string(data))
	}
}
