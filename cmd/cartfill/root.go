package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartfill/cartfill/internal/catalog"
	"github.com/cartfill/cartfill/internal/config"
	"github.com/cartfill/cartfill/internal/llm"
	"github.com/cartfill/cartfill/internal/pipeline"
	"github.com/cartfill/cartfill/internal/types"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "cartfill",
	Short:        "Cartfill - grocery recommendation service",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, agentCmd, recommendCmd, seedCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initLogger installs the process-wide logger from config.
func initLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}

	var handler slog.Handler
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildCatalogStore wires the product API client and catalog store from config.
// The catalog is not loaded yet; callers decide when to call Load.
func buildCatalogStore(cfg *config.Config) *catalog.Store {
	client := catalog.NewClient(cfg.Catalog.BaseURL, catalog.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		MinWait:     time.Duration(cfg.Retry.MinWait),
		MaxWait:     time.Duration(cfg.Retry.MaxWait),
	})
	return catalog.NewStore(client, cfg.Catalog.ProductsPerPage, cfg.Catalog.SnapshotPath)
}

// buildAgent assembles the recommendation pipeline. Without a model API key
// the agent runs in mocked mode, replaying recorded fixtures.
func buildAgent(cfg *config.Config, catalogStore *catalog.Store) *pipeline.Agent {
	enricher := pipeline.NewEnricher(catalogStore, cfg.Pipeline.EnrichWorkers)

	if cfg.Model.APIKey == "" {
		slog.Info("no model API key configured, running in mocked mode",
			"fixtures_dir", cfg.Model.FixturesDir)
		parseFixtures := pipeline.NewFixtureSource[types.ParsedGroceryList](
			filepath.Join(cfg.Model.FixturesDir, "parsed"))
		rankedFixtures := pipeline.NewFixtureSource[types.RecommendationList](
			filepath.Join(cfg.Model.FixturesDir, "ranked"))
		return pipeline.NewMockedAgent(parseFixtures, rankedFixtures, enricher, catalogStore)
	}

	gateway := llm.NewOpenAI(cfg.Model.APIKey, cfg.Model.Name, llm.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		MinWait:     time.Duration(cfg.Retry.MinWait),
		MaxWait:     time.Duration(cfg.Retry.MaxWait),
	})
	slog.Info("model gateway initialized", "model", cfg.Model.Name)

	parser := pipeline.NewParser(gateway)
	narrower := pipeline.NewNarrower(cfg.Pipeline.TopN, cfg.Pipeline.MinScore)
	ranker := pipeline.NewRanker(gateway, cfg.Pipeline.MaxSuggestions)
	return pipeline.NewAgent(parser, narrower, ranker, enricher, catalogStore)
}
