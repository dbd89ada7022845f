package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"afisha/internal/config"
	"afisha/internal/consumers"
	"afisha/internal/logger"
)

func main() {
	cfg := config.LoadIndexer()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	indexer, err := consumers.NewIndexer(cfg)
	if err != nil {
		logger.Fatal("Failed to create indexer", "error", err)
	}

	if err := indexer.Start(); err != nil {
		logger.Fatal("Failed to start indexer", "error", err)
	}

	logger.Get().Info("Indexer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := indexer.Shutdown(ctx); err != nil {
		logger.Get().Error("Error during shutdown", "error", err)
	}

	logger.Get().Info("Indexer stopped")
}
