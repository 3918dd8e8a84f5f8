package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/deusflow/thainews/internal/app"
	"github.com/deusflow/thainews/internal/config"
	"github.com/deusflow/thainews/internal/logger"
)

func main() {
	os.Exit(run())
}

// run performs one ingest run and returns the process exit code.
func run() int {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return 1
	}
	defer cleanup()

	logger.Info("run started", "feeds", len(cfg.Feeds), "store", cfg.StorePath, "provider", cfg.Provider)

	res, err := runner.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	logger.Info("run finished",
		"feeds_ok", res.FeedsProcessed,
		"feed_errors", res.FeedErrors,
		"entries", res.EntriesSeen,
		"duplicates", res.Duplicates,
		"new", res.NewRecords,
		"translation_failures", res.TranslationFailures,
		"deferred", res.Deferred,
		"store_size", res.StoreSize,
		"archive_size", res.ArchiveSize,
	)
	return 0
}
