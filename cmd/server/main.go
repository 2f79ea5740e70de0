package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cargue/internal/catalog"
	"cargue/internal/config"
	"cargue/internal/core"
	"cargue/internal/ingest"
	"cargue/internal/logging"
	"cargue/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"target_sheet", cfg.Import.TargetSheet,
		"cost_header", cfg.Import.CostHeader,
	)

	refs := catalog.DefaultReferences()
	if cfg.Import.ReferenceFile != "" {
		refs, err = catalog.LoadReferences(cfg.Import.ReferenceFile)
		if err != nil {
			slog.Error("failed to load reference sets", "file", cfg.Import.ReferenceFile, "error", err)
			os.Exit(1)
		}
		slog.Info("reference sets loaded", "file", cfg.Import.ReferenceFile)
	}

	cat := catalog.New(refs, catalog.Options{CostHeader: cfg.Import.CostHeader})

	session := core.NewSession(cat, core.SessionOptions{
		Ingest: ingest.Options{
			TargetSheet: cfg.Import.TargetSheet,
			HeaderRow:   cfg.Import.HeaderRow,
		},
		Limits: core.Limits{
			QuantityMin: cfg.Import.QuantityMin,
			QuantityMax: cfg.Import.QuantityMax,
			YearMin:     cfg.Import.YearMin,
			YearMax:     cfg.Import.YearMax,
		},
		Extensions: cfg.Import.Extensions,
	})

	server := web.NewServer(session, cat, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
