package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartfill/cartfill/internal/api"
	"github.com/cartfill/cartfill/internal/config"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the recommendation agent server",
	RunE:  runAgent,
}

func runAgent(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)
	slog.Info("configuration loaded")

	// Catalog is loaded once at startup. A load failure is not fatal: the
	// agent serves empty recommendations until restarted with a working
	// catalog source.
	catalogStore := buildCatalogStore(cfg)
	catalogStore.Load(ctx, cfg.Catalog.Source)
	slog.Info("catalog loaded",
		"source", cfg.Catalog.Source,
		"products", len(catalogStore.Catalog().Catalog),
	)

	agent := buildAgent(cfg, catalogStore)

	handler := api.NewAgentHandler(agent, Version)
	router := api.NewAgentRouter(handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	go func() {
		slog.Info("agent server starting", "address", addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
