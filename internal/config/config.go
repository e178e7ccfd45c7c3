// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Cache backends
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendMemory = "memory"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for cache.db (always absolute)
	LogLevel         string
	Port             int
	DevMode          bool
	RiskFreeRate     float64 // Annual rate used when a request omits one
	DriftThreshold   float64 // Absolute weight deviation that flags drift
	MaxAllocation    float64 // Per-position cap for Kelly sizing
	CacheBackend     string  // sqlite or memory
	CacheCleanupCron string  // Six-field cron expression, seconds first
}

// Load reads configuration from .env and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return fromEnv()
}

func fromEnv() (*Config, error) {
	absDataDir, err := filepath.Abs(getEnv("FINTRACK_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("FINTRACK_PORT", 8001),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RiskFreeRate:     getEnvAsFloat("FINTRACK_RISK_FREE_RATE", 0.05),
		DriftThreshold:   getEnvAsFloat("FINTRACK_DRIFT_THRESHOLD", 0.05),
		MaxAllocation:    getEnvAsFloat("FINTRACK_MAX_ALLOCATION", 0.25),
		CacheBackend:     getEnv("FINTRACK_CACHE_BACKEND", CacheBackendSQLite),
		CacheCleanupCron: getEnv("FINTRACK_CACHE_CLEANUP_CRON", "0 0 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if !finite(c.RiskFreeRate) || c.RiskFreeRate <= -1 || c.RiskFreeRate > 1 {
		return fmt.Errorf("invalid risk-free rate %v: must be in (-1, 1]", c.RiskFreeRate)
	}
	if !finite(c.DriftThreshold) || c.DriftThreshold < 0 || c.DriftThreshold > 1 {
		return fmt.Errorf("invalid drift threshold %v: must be in [0, 1]", c.DriftThreshold)
	}
	if !finite(c.MaxAllocation) || c.MaxAllocation <= 0 || c.MaxAllocation > 1 {
		return fmt.Errorf("invalid max allocation %v: must be in (0, 1]", c.MaxAllocation)
	}

	switch c.CacheBackend {
	case CacheBackendSQLite, CacheBackendMemory:
	default:
		return fmt.Errorf("invalid cache backend %q: must be %q or %q", c.CacheBackend, CacheBackendSQLite, CacheBackendMemory)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.CacheCleanupCron); err != nil {
		return fmt.Errorf("invalid cache cleanup schedule %q: %w", c.CacheCleanupCron, err)
	}

	return nil
}

// CachePath is the location of the SQLite cache database
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
