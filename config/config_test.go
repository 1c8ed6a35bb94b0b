package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfmotta/cargobot/core"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODEL_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, "test-key", cfg.Model.APIKey)
	assert.Equal(t, 0.7, cfg.Model.Temperature)
	assert.Equal(t, 800, cfg.Model.MaxTokens)
	assert.Equal(t, 3, cfg.Retry.Retries)
	assert.Equal(t, 800*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 15*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 10, cfg.ModelHistoryLimit)
	assert.Zero(t, cfg.CacheTTL)
	assert.Equal(t, "data/cargobot.db", cfg.DatabasePath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("MODEL_TEMPERATURE", "0.2")
	t.Setenv("RETRY_MAX", "5")
	t.Setenv("SESSION_IDLE_TIMEOUT", "30m")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("HISTORY_LIMIT", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Model.Provider)
	assert.Equal(t, "ant-key", cfg.Model.APIKey)
	assert.Equal(t, 0.2, cfg.Model.Temperature)
	assert.Equal(t, 5, cfg.Retry.Retries)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 20, cfg.HistoryLimit)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("MODEL_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("MODEL_API_KEY", "k")

	t.Setenv("RETRY_MAX", "muitos")
	_, err := Load()
	assert.ErrorContains(t, err, "RETRY_MAX")
	t.Setenv("RETRY_MAX", "")

	t.Setenv("SESSION_IDLE_TIMEOUT", "quinze")
	_, err = Load()
	assert.ErrorContains(t, err, "SESSION_IDLE_TIMEOUT")
	t.Setenv("SESSION_IDLE_TIMEOUT", "")

	t.Setenv("MODEL_PROVIDER", "gemini")
	_, err = Load()
	assert.ErrorContains(t, err, "MODEL_PROVIDER")
}
