// Package main is the standalone HealthHive server. It requires no external
// databases: the reference catalog and lab reports live in a local SQLite
// file seeded with the built-in catalog on first run.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/api"
	"github.com/healthhive/healthhive/internal/config"
	"github.com/healthhive/healthhive/internal/domain"
	"github.com/healthhive/healthhive/internal/repository"
	"github.com/healthhive/healthhive/internal/service"
)

func main() {
	cfg := config.LoadLiteConfig()
	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger.WithFields(logrus.Fields{
		"data_dir": cfg.DataDir,
		"port":     cfg.HTTPPort,
	}).Info("Starting HealthHive server (lite)")

	store, err := repository.NewSQLiteStore(cfg.CatalogDBPath())
	if err != nil {
		logger.WithError(err).Fatal("Failed to open local store")
	}
	defer store.Close()

	serverCfg := &domain.Config{
		Server: domain.ServerConfig{
			Host:             "0.0.0.0",
			Port:             cfg.HTTPPort,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			AnalyzeRateLimit: 5,
			AnalyzeRateBurst: 10,
		},
		Logging: domain.LoggingConfig{Level: cfg.LogLevel, Format: cfg.LogFormat},
		Analysis: domain.AnalysisConfig{
			MaxTextSize:   cfg.MaxTextSize,
			DefaultAge:    cfg.DefaultAge,
			DefaultGender: cfg.DefaultGender,
		},
	}

	server := api.NewServer(serverCfg, api.Deps{
		Analysis: service.NewAnalysisService(store, logger),
		Summary:  service.NewSummaryService(logger),
		Catalog:  store,
		Reports:  store,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
