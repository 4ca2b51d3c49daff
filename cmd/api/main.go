package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/karac38/gdevapps-portal/internal/api"
	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/classroom"
	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/drive"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/parentbook"
	"github.com/karac38/gdevapps-portal/internal/queue"
	"github.com/karac38/gdevapps-portal/internal/registry"
	"github.com/karac38/gdevapps-portal/internal/spreadsheet"

	"github.com/gin-gonic/gin"
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

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

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

	producer := queue.NewProducer(redisClient, cfg)

	// Google services share one guard so refreshed credentials are persisted once
	guard := auth.NewGuard(auth.NewOAuthRefresher(cfg), repo)
	sheets := spreadsheet.NewService(spreadsheet.NewGoogleAPI(cfg), guard, nil)
	drv := drive.NewService(drive.NewGoogleAPI(cfg), repo, guard, cfg.Google.RootFolderName)
	synth := parentbook.NewSynthesizer(sheets, drv, repo)
	sharer := parentbook.NewSharer(synth, sheets, drv, repo, cfg.Google.DefaultAvatar)
	classes := classroom.NewClient(classroom.NewGoogleAPI(cfg), guard)

	handler := api.NewHandler(cfg, repo, producer, sheets, registry.New(repo, sheets), classes, sharer)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	api.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
