// Package main is the full HealthHive server: Postgres-backed catalog and
// report storage, optional Redis cache tier.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/api"
	"github.com/healthhive/healthhive/internal/config"
	"github.com/healthhive/healthhive/internal/database"
	"github.com/healthhive/healthhive/internal/domain"
	"github.com/healthhive/healthhive/internal/repository"
	"github.com/healthhive/healthhive/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting HealthHive server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	runner, err := database.NewMigrationRunner(database.URL(cfg.Database), cfg.Database.MigrationsPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create migration runner")
	}
	if err := runner.Up(); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	runner.Close()

	var catalog domain.ReferenceCatalog = repository.NewReferenceRepository(db.Pool, logger)
	if cfg.Cache.Enabled {
		cached, err := service.NewCachedCatalog(catalog, service.CachedCatalogConfig{
			RedisClient: newRedisClient(cfg.Cache, logger),
			RedisTTL:    cfg.Cache.DefaultTTL,
			MemorySize:  cfg.Cache.MemorySize,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create catalog cache")
		}
		catalog = cached
	}

	server := api.NewServer(cfg, api.Deps{
		Analysis:    service.NewAnalysisService(catalog, logger),
		Summary:     service.NewSummaryService(logger),
		Catalog:     catalog,
		Reports:     repository.NewReportRepository(db.Pool, logger),
		LabTests:    repository.NewLabTestRepository(db.Pool, logger),
		HealthCheck: db.Health,
	}, logger)

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

// newRedisClient builds the cache tier client; returns nil when no URL is
// configured, which disables the Redis tier but keeps the memory tier.
func newRedisClient(cfg domain.CacheConfig, logger *logrus.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Invalid Redis URL, running without the Redis cache tier")
		return nil
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opt.PoolTimeout = cfg.PoolTimeout
	}
	return redis.NewClient(opt)
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}
