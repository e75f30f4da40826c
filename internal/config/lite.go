// Package config provides configuration management for the HealthHive server.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/healthhive/healthhive/internal/domain"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no Postgres or Redis and keeps all state in a local
// SQLite file seeded with the built-in reference catalog.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for data files

	// HTTP settings
	HTTPPort int

	// Analysis settings
	MaxTextSize   int
	DefaultAge    int
	DefaultGender domain.Gender

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".healthhive")

	return &LiteConfig{
		DataDir:       dataDir,
		HTTPPort:      8080,
		MaxTextSize:   1 << 20,
		DefaultAge:    25,
		DefaultGender: domain.GenderMale,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("HEALTHHIVE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("HEALTHHIVE_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}
	if v := os.Getenv("HEALTHHIVE_MAX_TEXT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTextSize = n
		}
	}
	if v := os.Getenv("HEALTHHIVE_DEFAULT_AGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 120 {
			cfg.DefaultAge = n
		}
	}
	if v := os.Getenv("HEALTHHIVE_DEFAULT_GENDER"); v != "" {
		if g := domain.Gender(v); g.IsValid() {
			cfg.DefaultGender = g
		}
	}
	if v := os.Getenv("HEALTHHIVE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HEALTHHIVE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// CatalogDBPath returns the path to the standalone SQLite database.
func (c *LiteConfig) CatalogDBPath() string {
	return filepath.Join(c.DataDir, "healthhive.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
