package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartfill/cartfill/internal/config"
	"github.com/cartfill/cartfill/internal/store"
	"github.com/cartfill/cartfill/internal/types"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the product database from a JSON catalog dump",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "path to JSON catalog dump (required)")
	seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read catalog dump: %w", err)
	}

	var products []types.ProductDetails
	if err := json.Unmarshal(data, &products); err != nil {
		return fmt.Errorf("parse catalog dump: %w", err)
	}

	db, err := store.NewProductStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Seed(context.Background(), products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	slog.Info("catalog seeded", "products", len(products), "path", cfg.Database.Path)
	return nil
}
