// Package config holds the pipeline's tunable surface: a yaml file merged
// with environment overrides, handed to every module at construction and
// re-propagated at runtime through ApplyConfig.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// #region config

// Config is the full tunable surface. All intervals are millisecond
// integers; use the Duration accessors when scheduling.
type Config struct {
	// Loop
	PollIntervalMs  int `yaml:"poll_interval_ms" env:"HELPER_POLL_INTERVAL_MS"`
	LatencyBudgetMs int `yaml:"latency_budget_ms" env:"HELPER_LATENCY_BUDGET_MS"`

	// Decision cache
	CacheSize  int `yaml:"cache_size" env:"HELPER_CACHE_SIZE"`
	CacheTTLMs int `yaml:"cache_ttl_ms" env:"HELPER_CACHE_TTL_MS"`

	// Provider
	Provider          string `yaml:"provider" env:"HELPER_PROVIDER"`
	Model             string `yaml:"model" env:"HELPER_MODEL"`
	APIKey            string `yaml:"-" env:"HELPER_API_KEY"` // env only, never on disk
	ProviderTimeoutMs int    `yaml:"provider_timeout_ms" env:"HELPER_PROVIDER_TIMEOUT_MS"`
	MinBackoffMs      int    `yaml:"min_backoff_ms" env:"HELPER_MIN_BACKOFF_MS"`
	MaxBackoffMs      int    `yaml:"max_backoff_ms" env:"HELPER_MAX_BACKOFF_MS"`
	MaxRetries        int    `yaml:"max_retries" env:"HELPER_MAX_RETRIES"`

	// Diff notification throttle
	RateLimitMs           int `yaml:"rate_limit_ms" env:"HELPER_RATE_LIMIT_MS"`
	SignificanceThreshold int `yaml:"significance_threshold" env:"HELPER_SIGNIFICANCE_THRESHOLD"`

	// Misc
	HistoryDB string `yaml:"history_db" env:"HELPER_HISTORY_DB"`
	LogLevel  string `yaml:"log_level" env:"HELPER_LOG_LEVEL"`
	SimMode   bool   `yaml:"sim_mode" env:"HELPER_SIM_MODE"`
	SimSeats  int    `yaml:"sim_seats" env:"HELPER_SIM_SEATS"`
}

// Default returns the configuration used when no file or env overrides are
// present.
func Default() Config {
	return Config{
		PollIntervalMs:        1000,
		LatencyBudgetMs:       2000,
		CacheSize:             64,
		CacheTTLMs:            30000,
		Provider:              "local",
		Model:                 "gpt-4o-mini",
		ProviderTimeoutMs:     5000,
		MinBackoffMs:          500,
		MaxBackoffMs:          8000,
		MaxRetries:            3,
		RateLimitMs:           1000,
		SignificanceThreshold: 1,
		HistoryDB:             "poker_helper.db",
		LogLevel:              "info",
		SimMode:               true,
		SimSeats:              6,
	}
}

// #endregion config

// #region load

// Load builds a Config from defaults, an optional yaml file, and environment
// overrides, in that precedence order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMs)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.MinBackoffMs > c.MaxBackoffMs {
		return fmt.Errorf("min_backoff_ms %d exceeds max_backoff_ms %d", c.MinBackoffMs, c.MaxBackoffMs)
	}
	if c.SignificanceThreshold < 1 {
		return fmt.Errorf("significance_threshold must be >= 1, got %d", c.SignificanceThreshold)
	}
	return nil
}

// #endregion load

// #region durations

func (c Config) PollInterval() time.Duration    { return time.Duration(c.PollIntervalMs) * time.Millisecond }
func (c Config) LatencyBudget() time.Duration   { return time.Duration(c.LatencyBudgetMs) * time.Millisecond }
func (c Config) CacheTTL() time.Duration        { return time.Duration(c.CacheTTLMs) * time.Millisecond }
func (c Config) ProviderTimeout() time.Duration { return time.Duration(c.ProviderTimeoutMs) * time.Millisecond }
func (c Config) MinBackoff() time.Duration      { return time.Duration(c.MinBackoffMs) * time.Millisecond }
func (c Config) MaxBackoff() time.Duration      { return time.Duration(c.MaxBackoffMs) * time.Millisecond }
func (c Config) RateLimit() time.Duration       { return time.Duration(c.RateLimitMs) * time.Millisecond }

// #endregion durations

// #region receiver

// Receiver is implemented by modules that accept runtime configuration
// updates. The scheduler fans UpdateConfig out to every constructed module
// implementing it.
type Receiver interface {
	ApplyConfig(Config)
}

// #endregion receiver
