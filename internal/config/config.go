// Package config loads server settings from MWGAME_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMySQL    = "mysql"
)

// Config is the server configuration
type Config struct {
	Host string `env:"MWGAME_HOST"`
	Port int    `env:"MWGAME_PORT" envDefault:"8080"`

	StorageType string `env:"MWGAME_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"MWGAME_REDIS_URL"    envDefault:"redis://localhost:6379"`
	DatabaseDSN string `env:"MWGAME_DATABASE_DSN"`

	MaxAttempts          int           `env:"MWGAME_MAX_ATTEMPTS"           envDefault:"3"`
	RetryInitialInterval time.Duration `env:"MWGAME_RETRY_INITIAL_INTERVAL" envDefault:"10ms"`
	RetryMaxInterval     time.Duration `env:"MWGAME_RETRY_MAX_INTERVAL"     envDefault:"200ms"`
	DecisionPolicy       string        `env:"MWGAME_DECISION_POLICY"        envDefault:"first"`

	LogLevel string `env:"MWGAME_LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables only
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory, StorageRedis, StorageSQLite:
	case StoragePostgres, StorageMySQL:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("MWGAME_DATABASE_DSN is required for %s storage", c.StorageType)
		}
	default:
		return fmt.Errorf("unknown MWGAME_STORAGE_TYPE %q", c.StorageType)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("MWGAME_PORT %d out of range", c.Port)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MWGAME_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RetryInitialInterval <= 0 || c.RetryMaxInterval < c.RetryInitialInterval {
		return fmt.Errorf("retry intervals must satisfy 0 < initial (%s) <= max (%s)", c.RetryInitialInterval, c.RetryMaxInterval)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error)
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid MWGAME_LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
