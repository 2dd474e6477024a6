package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rpattn/rentroll/internal/analysis"
	"github.com/rpattn/rentroll/internal/config"
	"github.com/rpattn/rentroll/internal/db"
	"github.com/rpattn/rentroll/internal/domain"
	"github.com/rpattn/rentroll/internal/infercache"
	"github.com/rpattn/rentroll/internal/inference"
	"github.com/rpattn/rentroll/internal/middleware"
	"github.com/rpattn/rentroll/internal/repository"
	"github.com/rpattn/rentroll/internal/watcher"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(".", logger.Sugar().Infof)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, conn.Pool, cfg.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Create repositories
	fileRepo := repository.NewProcessedFileRepository(conn.Pool)
	assessmentRepo := repository.NewAssessmentRepository(conn.Pool)

	// Create the pipeline: cache, inference engine, orchestrator
	cache := infercache.New[domain.HeaderDetection](cfg.CacheTTL, nil)
	defer cache.Close()

	engine := inference.NewClient(cfg.EngineBaseURL, cfg.EngineModel, cfg.EngineTimeout, logger)
	producer := analysis.NewStoredAssessmentProducer(assessmentRepo)
	service := analysis.NewService(engine, cache, producer, fileRepo, logger)

	// Optional drop-folder ingestion
	if cfg.WatchDir != "" {
		w, err := watcher.New(service, logger)
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}
		defer func() { _ = w.Close() }()
		if err := w.Watch(ctx, cfg.WatchDir); err != nil {
			logger.Fatal("Failed to watch drop folder", zap.String("dir", cfg.WatchDir), zap.Error(err))
		}
		logger.Info("watching drop folder", zap.String("dir", cfg.WatchDir))
	}

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	mux := http.NewServeMux()
	mux.Handle("/analyze", analysis.NewHTTPHandler(service))
	mux.Handle("/cache", analysis.NewCacheHandler(service))
	mux.Handle("/portfolio/summary", analysis.NewSummaryHandler(assessmentRepo))

	handler := corsHandler.Handler(middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting rent roll analysis server", zap.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
