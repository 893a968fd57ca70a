// Package common provides shared utilities for moverwatch
package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/moverwatch/internal/interfaces"
)

// Storage backends accepted by StorageConfig.Backend
const (
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendSurrealDB = "surrealdb"
	BackendRedis     = "redis"
	BackendMemory    = "memory"
)

// Config holds all configuration for moverwatch
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Cache       CacheConfig    `toml:"cache"`
	Wishlist    WishlistConfig `toml:"wishlist"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects the key-value backend and holds per-backend settings.
type StorageConfig struct {
	Backend   string          `toml:"backend"`
	Path      string          `toml:"path"` // file backend directory
	SQLite    SQLiteConfig    `toml:"sqlite"`
	SurrealDB SurrealDBConfig `toml:"surrealdb"`
	Redis     RedisConfig     `toml:"redis"`
}

// SQLiteConfig holds the embedded SQLite backend settings.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// SurrealDBConfig holds SurrealDB connection settings.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"` // key prefix, keeps moverwatch keys apart on a shared instance
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
}

// AlphaVantageConfig holds market data API configuration
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per minute
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CacheConfig holds expiring cache housekeeping settings.
type CacheConfig struct {
	SweepSchedule string `toml:"sweep_schedule"` // cron spec, empty disables the sweep
	WarmOnStart   bool   `toml:"warm_on_start"`
}

// WishlistConfig holds wishlist background settings.
type WishlistConfig struct {
	PriceRefreshSchedule string `toml:"price_refresh_schedule"` // cron spec, empty disables refresh
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    "data/kv",
			SQLite:  SQLiteConfig{Path: "data/moverwatch.db"},
			SurrealDB: SurrealDBConfig{
				Address:   "ws://localhost:8000/rpc",
				Username:  "root",
				Password:  "root",
				Namespace: "moverwatch",
				Database:  "moverwatch",
			},
			Redis: RedisConfig{
				Address: "localhost:6379",
				Prefix:  "moverwatch:",
			},
		},
		Clients: ClientsConfig{
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 5,
				Timeout:   "10s",
			},
		},
		Cache: CacheConfig{
			SweepSchedule: "@every 30m",
			WarmOnStart:   true,
		},
		Wishlist: WishlistConfig{
			PriceRefreshSchedule: "",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/moverwatch.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is read first; it never overrides
// variables already present in the environment.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateStorageBackend(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MOVERWATCH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("MOVERWATCH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("MOVERWATCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("MOVERWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("MOVERWATCH_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("MOVERWATCH_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "kv")
		config.Storage.SQLite.Path = filepath.Join(path, "moverwatch.db")
	}

	if addr := os.Getenv("MOVERWATCH_SURREALDB_ADDRESS"); addr != "" {
		config.Storage.SurrealDB.Address = addr
	}

	if addr := os.Getenv("MOVERWATCH_REDIS_ADDRESS"); addr != "" {
		config.Storage.Redis.Address = addr
	}

	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		config.Clients.AlphaVantage.APIKey = key
	}

	if url := os.Getenv("MOVERWATCH_ALPHAVANTAGE_BASE_URL"); url != "" {
		config.Clients.AlphaVantage.BaseURL = url
	}
}

// validateStorageBackend falls back to the file backend for unknown values.
func validateStorageBackend(config *Config) {
	switch config.Storage.Backend {
	case BackendFile, BackendSQLite, BackendSurrealDB, BackendRedis, BackendMemory:
	default:
		config.Storage.Backend = BackendFile
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment, the key-value store, or fallback.
// Keys stored at runtime live under "config_<name>".
func ResolveAPIKey(ctx context.Context, store interfaces.KeyValueStore, name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"alphavantage_api_key": {"ALPHAVANTAGE_API_KEY", "MOVERWATCH_ALPHAVANTAGE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if store != nil {
		value, found, err := store.Get(ctx, "config_"+name)
		if err == nil && found && value != "" {
			return value, nil
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}
