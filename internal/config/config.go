package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Model    ModelConfig    `yaml:"model"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Retry    RetryConfig    `yaml:"retry"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP server settings, shared by the product API
// server and the agent server.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains product database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig controls how the agent loads its catalog snapshot.
type CatalogConfig struct {
	// Source is "live" (paginated product API) or "snapshot" (local JSON file).
	Source          string `yaml:"source"`
	BaseURL         string `yaml:"base_url"`
	ProductsPerPage int    `yaml:"products_per_page"`
	SnapshotPath    string `yaml:"snapshot_path"`
}

// ModelConfig contains generative model settings. An empty APIKey selects
// mocked mode: parsing and ranking are answered from recorded fixtures.
type ModelConfig struct {
	APIKey      string `yaml:"-"` // env-only, never in YAML
	Name        string `yaml:"name"`
	FixturesDir string `yaml:"fixtures_dir"`
}

// PipelineConfig contains recommendation pipeline settings.
type PipelineConfig struct {
	TopN           int `yaml:"top_n"`
	MinScore       int `yaml:"min_score"`
	EnrichWorkers  int `yaml:"enrich_workers"`
	MaxSuggestions int `yaml:"max_suggestions"`
}

// RetryConfig contains the backoff policy applied to model and product API
// calls.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	MinWait     Duration `yaml:"min_wait"`
	MaxWait     Duration `yaml:"max_wait"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("CARTFILL_CONFIG_PATH", "config/cartfill.yaml")

	// Missing file is not an error; defaults apply
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/cartfill.db",
		},
		Catalog: CatalogConfig{
			Source:          "live",
			BaseURL:         "http://localhost:8080",
			ProductsPerPage: 50,
			SnapshotPath:    "data/catalog.json",
		},
		Model: ModelConfig{
			Name:        "gpt-4o-mini",
			FixturesDir: "fixtures",
		},
		Pipeline: PipelineConfig{
			TopN:           5,
			MinScore:       60,
			EnrichWorkers:  4,
			MaxSuggestions: 3,
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			MinWait:     Duration(250 * time.Millisecond),
			MaxWait:     Duration(10 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("CARTFILL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CARTFILL_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("CARTFILL_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("CARTFILL_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Database
	if v := os.Getenv("CARTFILL_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Catalog
	if v := os.Getenv("CARTFILL_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("CARTFILL_CATALOG_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}
	if v := os.Getenv("CARTFILL_PRODUCTS_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.ProductsPerPage = n
		}
	}
	if v := os.Getenv("CARTFILL_SNAPSHOT_PATH"); v != "" {
		cfg.Catalog.SnapshotPath = v
	}

	// Model (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("CARTFILL_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("CARTFILL_FIXTURES_DIR"); v != "" {
		cfg.Model.FixturesDir = v
	}

	// Pipeline
	if v := os.Getenv("CARTFILL_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.TopN = n
		}
	}
	if v := os.Getenv("CARTFILL_MIN_SCORE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.MinScore = n
		}
	}
	if v := os.Getenv("CARTFILL_ENRICH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.EnrichWorkers = n
		}
	}

	// Retry
	if v := os.Getenv("CARTFILL_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("CARTFILL_RETRY_MIN_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.MinWait = Duration(d)
		}
	}
	if v := os.Getenv("CARTFILL_RETRY_MAX_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.MaxWait = Duration(d)
		}
	}

	// Log
	if v := os.Getenv("CARTFILL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CARTFILL_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// validate checks that configuration values are usable. A missing model API
// key is deliberately not an error: the agent then runs in mocked mode.
func (c *Config) validate() error {
	if c.Catalog.Source != "live" && c.Catalog.Source != "snapshot" {
		return fmt.Errorf("catalog.source must be \"live\" or \"snapshot\", got %q", c.Catalog.Source)
	}
	if c.Catalog.ProductsPerPage <= 0 {
		return errors.New("catalog.products_per_page must be positive")
	}
	if c.Pipeline.TopN <= 0 {
		return errors.New("pipeline.top_n must be positive")
	}
	if c.Pipeline.MinScore < 0 || c.Pipeline.MinScore > 100 {
		return errors.New("pipeline.min_score must be within 0-100")
	}
	if c.Pipeline.EnrichWorkers <= 0 {
		return errors.New("pipeline.enrich_workers must be positive")
	}
	if c.Retry.MaxAttempts <= 0 {
		return errors.New("retry.max_attempts must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
