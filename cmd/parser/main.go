// cmd/parser/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github-rank-tracker/internal/config"
	apperrors "github-rank-tracker/internal/errors"
	"github-rank-tracker/internal/github"
	"github-rank-tracker/internal/pipeline"
	"github-rank-tracker/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Ingestion run failed", "error", err)
		os.Exit(1)
	}
}

// run executes exactly one ingestion cycle. The binary is meant to be invoked
// by a scheduler; a failed cycle exits nonzero and the next invocation starts
// over from scratch.
func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadParserConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context so a shutdown signal aborts the cycle
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Establish the database pool eagerly so connection failures surface
	// before any upstream call is made.
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return &apperrors.StorageConnectionError{Err: err}
	}
	defer dbpool.Close()
	if err := dbpool.Ping(ctx); err != nil {
		return &apperrors.StorageConnectionError{Err: err}
	}
	logger.Info("Database connection established")

	// 5. Wire the pipeline and run one cycle
	ghClient := github.NewClient(cfg.GithubToken, cfg.HTTPTimeout, logger)
	gateway := store.New(dbpool, logger)
	runner := pipeline.NewRunner(ghClient, gateway, logger,
		cfg.TopN, cfg.ActivityWindowDays, cfg.FetchConcurrency)

	if err := runner.Run(ctx); err != nil {
		return err
	}

	logger.Info("Ingestion cycle completed")
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
