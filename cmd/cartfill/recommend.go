package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cartfill/cartfill/internal/config"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [file]",
	Short: "Run the recommendation pipeline over a grocery list file",
	Long: `Runs one recommendation pass over a grocery list and prints the result
as JSON. Reads the list from the given file, or from stdin when omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)

	filename := "stdin"
	var text []byte
	if len(args) == 1 {
		filename = filepath.Base(args[0])
		text, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read grocery list: %w", err)
		}
	} else {
		text, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read grocery list from stdin: %w", err)
		}
	}

	catalogStore := buildCatalogStore(cfg)
	catalogStore.Load(ctx, cfg.Catalog.Source)

	agent := buildAgent(cfg, catalogStore)
	result := agent.Process(ctx, filename, string(text))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
