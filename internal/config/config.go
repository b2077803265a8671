// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration. Every knob has a default that
// works for local development.
type Config struct {
	ListenAddr string `env:"GAMEWATCH_LISTEN" envDefault:":8080"`
	RedisAddr  string `env:"GAMEWATCH_REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	DataDir    string `env:"GAMEWATCH_DATA_DIR" envDefault:"./data/gamewatch"`

	// CacheTTL is how long a per-country result stays fresh in the on-demand
	// cache. DetailTTL covers the Play package-id identity cache, which
	// changes on the scale of app releases, not chart refreshes.
	CacheTTL  time.Duration `env:"GAMEWATCH_CACHE_TTL" envDefault:"5m"`
	DetailTTL time.Duration `env:"GAMEWATCH_DETAIL_TTL" envDefault:"168h"`

	// MaxConcurrent caps simultaneous upstream calls process-wide.
	MaxConcurrent int `env:"GAMEWATCH_MAX_CONCURRENT" envDefault:"5"`

	// BatchSize is how many countries an incremental snapshot run covers.
	BatchSize int `env:"GAMEWATCH_BATCH_SIZE" envDefault:"10"`

	// RetryDelays is the backoff table for individual upstream calls; an
	// operation is attempted len+1 times.
	RetryDelays []time.Duration `env:"GAMEWATCH_RETRY_DELAYS" envDefault:"1s,5s,15s" envSeparator:","`

	// Base URL overrides exist for tests and for fronting the storefronts
	// with a proxy; empty means the real endpoints.
	AppStoreBaseURL  string `env:"GAMEWATCH_APPSTORE_URL"`
	PlayStoreBaseURL string `env:"GAMEWATCH_PLAYSTORE_URL"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxConcurrent < 1 {
		return Config{}, fmt.Errorf("GAMEWATCH_MAX_CONCURRENT must be at least 1, got %d", cfg.MaxConcurrent)
	}
	if cfg.BatchSize < 1 {
		return Config{}, fmt.Errorf("GAMEWATCH_BATCH_SIZE must be at least 1, got %d", cfg.BatchSize)
	}
	return cfg, nil
}
