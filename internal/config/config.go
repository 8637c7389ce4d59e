// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/samdwyer/glassfist/internal/gamedata"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds every runtime option.
type Config struct {
	// Mode selects the solo or the two-franchise game.
	Mode string `env:"GLASSFIST_MODE" envDefault:"duel"`
	// Seed for random number generation. A seed of 0 means a random seed
	// will be generated.
	Seed int64 `env:"GLASSFIST_SEED" envDefault:"0"`

	Store     StoreConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// StoreConfig selects and configures the persistent store.
type StoreConfig struct {
	Backend       string `env:"GLASSFIST_STORE_BACKEND" envDefault:"sqlite"`
	Path          string `env:"GLASSFIST_STORE_PATH" envDefault:"glassfist.db"`
	RedisAddr     string `env:"GLASSFIST_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"GLASSFIST_REDIS_PASSWORD"`
	RedisDB       int    `env:"GLASSFIST_REDIS_DB" envDefault:"0"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `env:"GLASSFIST_LOG_LEVEL" envDefault:"info"`
	Format string `env:"GLASSFIST_LOG_FORMAT" envDefault:"json"`
	// File receives all log output while the terminal hub is running.
	File string `env:"GLASSFIST_LOG_FILE" envDefault:"glassfist.log"`
}

// TelemetryConfig configures span export to Honeycomb.
type TelemetryConfig struct {
	Enabled bool   `env:"GLASSFIST_TELEMETRY_ENABLED" envDefault:"false"`
	APIKey  string `env:"HONEYCOMB_GLASSFIST_API_KEY"`
	Dataset string `env:"HONEYCOMB_GLASSFIST_DATASET" envDefault:"glassfist"`
}

// MetricsConfig configures the prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `env:"GLASSFIST_METRICS_ADDR"`
}

// Load reads an optional .env file, then parses the environment.
// A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// GameMode returns Mode as a gamedata.Mode.
func (c Config) GameMode() gamedata.Mode {
	return gamedata.Mode(c.Mode)
}

// Validate rejects unknown modes and store backends.
func (c Config) Validate() error {
	var errs []error
	if _, err := gamedata.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("sqlite store needs GLASSFIST_STORE_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("redis db %d below 0", c.Store.RedisDB))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
