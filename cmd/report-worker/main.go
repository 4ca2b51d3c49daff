package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/queue"
	"github.com/karac38/gdevapps-portal/internal/spreadsheet"
	"github.com/karac38/gdevapps-portal/internal/storage"
	"github.com/karac38/gdevapps-portal/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting report worker")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repo := db.NewRepository(database)

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	guard := auth.NewGuard(auth.NewOAuthRefresher(cfg), repo)
	sheets := spreadsheet.NewService(spreadsheet.NewGoogleAPI(cfg), guard, nil)

	reportWorker := worker.NewReportWorker(cfg, repo, sheets, s3Storage, queue.NewConsumer(redisClient, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := reportWorker.Start(ctx); err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("Report worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down report worker...")

	cancel()
	reportWorker.Stop()

	log.Info().Msg("Report worker exited")
}
