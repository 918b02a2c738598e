package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/savegress/intakedesk/internal/api"
	"github.com/savegress/intakedesk/internal/audit"
	"github.com/savegress/intakedesk/internal/config"
	"github.com/savegress/intakedesk/internal/intake"
	"github.com/savegress/intakedesk/internal/metrics"
	"github.com/savegress/intakedesk/internal/storage"
	"github.com/savegress/intakedesk/pkg/logging"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := logging.New(cfg.Log.Level)

	logger.Info("starting IntakeDesk", "environment", cfg.Server.Environment)

	// Persistence layer and record store
	fileStore := storage.NewFileStore(cfg.Storage.DataFile, logger.Logger)
	if _, err := fileStore.LoadAll(); err != nil {
		// Corrupt data surfaces per-request as well; flag it at boot so
		// the operator sees it immediately.
		logger.Error("data file unreadable", "path", fileStore.Path(), "error", err)
	}
	store := intake.NewStore(fileStore, logger.Logger)

	// Access audit trail
	auditLogger := audit.NewLogger(&cfg.Audit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := auditLogger.Start(ctx); err != nil {
		log.Fatalf("Failed to start audit logger: %v", err)
	}

	// HTTP metrics
	httpMetrics := metrics.NewHTTPMetrics(nil)

	// API server
	server := api.NewServer(cfg, store, auditLogger, httpMetrics, logger.Logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("IntakeDesk API listening", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down IntakeDesk")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	auditLogger.Stop()

	logger.Info("IntakeDesk stopped")
}

func loadConfig() *config.Config {
	configPath := os.Getenv("INTAKEDESK_CONFIG")
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Printf("Failed to load config from %s: %v, using defaults", configPath, err)
			return config.LoadFromEnv()
		}
		return cfg
	}
	return config.LoadFromEnv()
}
