package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/mentormatch/backend/internal/config"
	"github.com/mentormatch/backend/internal/observability"
	"github.com/mentormatch/backend/pkg/database"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	// halfvec and vector OIDs are registered per connection so the embeddings
	// repository can scan pgvector columns.
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithAfterConnect(pgxvec.RegisterTypes))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	app, err := NewApp(cfg, db)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := app.Run(runCtx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}

	if runErr != nil {
		slog.Error("Server exited with error", "error", runErr)
		os.Exit(1)
	}
}

// setupLogging installs a JSON slog handler at the configured level, wrapped
// so log records pick up request_id and trace context.
func setupLogging(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: observability.ParseLogLevel(level),
	})
	slog.SetDefault(slog.New(observability.NewTraceContextHandler(handler)))
}
