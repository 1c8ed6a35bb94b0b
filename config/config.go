// Package config loads the bot configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lfmotta/cargobot/core"
)

// Model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config aggregates every tunable of the bot.
type Config struct {
	Model   ModelConfig
	Retry   RetryConfig
	Session SessionConfig

	// HistoryLimit bounds history loaded from the store per message.
	HistoryLimit int
	// ModelHistoryLimit bounds verbatim turns sent to the model.
	ModelHistoryLimit int
	// CacheTTL expires cached replies. Zero keeps them until cleared.
	CacheTTL time.Duration
	// DatabasePath locates the SQLite file.
	DatabasePath string
	// BranchesFile locates the JSON branch list for routing.
	BranchesFile string
}

// ModelConfig describes the completion provider.
type ModelConfig struct {
	Provider    string
	Name        string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

// RetryConfig describes the model-call retry budget.
type RetryConfig struct {
	Retries        int
	BaseDelay      time.Duration
	InitialTimeout time.Duration
	MaxTimeout     time.Duration
}

// SessionConfig describes dialogue session expiry.
type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Model: ModelConfig{
			Provider:    strings.ToLower(envString("MODEL_PROVIDER", ProviderOpenAI)),
			Name:        envString("MODEL_NAME", ""),
			APIKey:      os.Getenv("MODEL_API_KEY"),
			Temperature: 0.7,
			MaxTokens:   800,
		},
		Retry: RetryConfig{
			Retries:        3,
			BaseDelay:      800 * time.Millisecond,
			InitialTimeout: 8 * time.Second,
			MaxTimeout:     30 * time.Second,
		},
		Session: SessionConfig{
			IdleTimeout:   15 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		HistoryLimit:      50,
		ModelHistoryLimit: 10,
		DatabasePath:      envString("DATABASE_PATH", "data/cargobot.db"),
		BranchesFile:      envString("BRANCHES_FILE", ""),
	}

	if cfg.Model.APIKey == "" {
		// Provider-specific variables keep existing deployments working.
		switch cfg.Model.Provider {
		case ProviderAnthropic:
			cfg.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	var err error
	if cfg.Model.Temperature, err = envFloat("MODEL_TEMPERATURE", cfg.Model.Temperature); err != nil {
		return nil, err
	}
	if cfg.Model.MaxTokens, err = envInt("MODEL_MAX_TOKENS", cfg.Model.MaxTokens); err != nil {
		return nil, err
	}
	if cfg.Retry.Retries, err = envInt("RETRY_MAX", cfg.Retry.Retries); err != nil {
		return nil, err
	}
	if cfg.Retry.BaseDelay, err = envDuration("RETRY_BASE_DELAY", cfg.Retry.BaseDelay); err != nil {
		return nil, err
	}
	if cfg.Retry.InitialTimeout, err = envDuration("RETRY_INITIAL_TIMEOUT", cfg.Retry.InitialTimeout); err != nil {
		return nil, err
	}
	if cfg.Retry.MaxTimeout, err = envDuration("RETRY_MAX_TIMEOUT", cfg.Retry.MaxTimeout); err != nil {
		return nil, err
	}
	if cfg.Session.IdleTimeout, err = envDuration("SESSION_IDLE_TIMEOUT", cfg.Session.IdleTimeout); err != nil {
		return nil, err
	}
	if cfg.Session.SweepInterval, err = envDuration("SESSION_SWEEP_INTERVAL", cfg.Session.SweepInterval); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit, err = envInt("HISTORY_LIMIT", cfg.HistoryLimit); err != nil {
		return nil, err
	}
	if cfg.ModelHistoryLimit, err = envInt("MODEL_HISTORY_LIMIT", cfg.ModelHistoryLimit); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown MODEL_PROVIDER: %q", c.Model.Provider)
	}
	if c.Model.APIKey == "" {
		return core.NewConfigError("MODEL_API_KEY")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if c.ModelHistoryLimit <= 0 {
		return fmt.Errorf("MODEL_HISTORY_LIMIT must be positive")
	}
	return nil
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %q", key, v)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %q", key, v)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %q", key, v)
	}
	return d, nil
}
