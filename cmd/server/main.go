package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rpattn/invtrack/internal/config"
	"github.com/rpattn/invtrack/internal/db"
	"github.com/rpattn/invtrack/internal/httpapi"
	"github.com/rpattn/invtrack/internal/ingestion"
	"github.com/rpattn/invtrack/internal/inventory"
	"github.com/rpattn/invtrack/internal/repository"
	"github.com/rpattn/invtrack/internal/seed"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Create repositories
	assetRepo := repository.NewAssetRepository(conn.Pool)
	settingsRepo := repository.NewSettingsRepository(conn.Pool)
	userRepo := repository.NewUserRepository(conn.Pool)
	importLogRepo := repository.NewImportLogRepository(conn.Pool)

	// Seed the default schema and the bootstrap admin account
	if err := seed.Ensure(ctx, settingsRepo, userRepo); err != nil {
		logger.Fatal("Failed to seed baseline data", zap.Error(err))
	}

	// Create services
	inventorySvc := inventory.NewService(assetRepo, settingsRepo)
	ingestionSvc := ingestion.NewService(assetRepo, settingsRepo, importLogRepo)

	handler := httpapi.NewHandler(inventorySvc, ingestionSvc, assetRepo, settingsRepo, userRepo, importLogRepo, logger)
	router := httpapi.NewRouter(handler, userRepo, logger, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting inventory API server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
