package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegntic/prompt-prompter-dd/utils"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "prompt-prompter", cfg.DDService)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.GeminiModel)
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 0.3, cfg.OptimizerTemperature)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 0.8, cfg.AccuracyThreshold)
	assert.Equal(t, 1000, cfg.TokenThreshold)
	assert.Equal(t, 2000.0, cfg.LatencyThresholdMS)
	assert.Equal(t, 0.10, cfg.InputPricePerMillion)
	assert.Equal(t, 0.40, cfg.OutputPricePerMillion)
	assert.Equal(t, 7860, cfg.Port)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("ACCURACY_THRESHOLD", "0.6")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, 0.6, cfg.AccuracyThreshold)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "LOUD")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig()
	for _, opt := range []ConfigOption{
		SetGeminiAPIKey("k"),
		SetGeminiModel("m1"),
		SetOptimizerModel("m2"),
		SetEmbeddingModel("m3"),
		SetTemperature(0.2),
		SetMaxAttempts(5),
		SetRetryBaseDelay(250 * time.Millisecond),
		SetAccuracyThreshold(0.9),
		SetTokenThreshold(500),
		SetLatencyThresholdMS(1000),
		SetPricing(1.25, 5.0),
		SetStatsdAddr("agent:8125"),
		SetLogLevel(utils.LogLevelDebug),
	} {
		opt(cfg)
	}

	assert.Equal(t, "k", cfg.GeminiAPIKey)
	assert.Equal(t, "m1", cfg.GeminiModel)
	assert.Equal(t, "m2", cfg.OptimizerModel)
	assert.Equal(t, "m3", cfg.EmbeddingModel)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 0.9, cfg.AccuracyThreshold)
	assert.Equal(t, 500, cfg.TokenThreshold)
	assert.Equal(t, 1000.0, cfg.LatencyThresholdMS)
	assert.Equal(t, 1.25, cfg.InputPricePerMillion)
	assert.Equal(t, 5.0, cfg.OutputPricePerMillion)
	assert.Equal(t, "agent:8125", cfg.StatsdAddr)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
}

func TestSetMaxAttemptsFloor(t *testing.T) {
	cfg := NewConfig()
	SetMaxAttempts(0)(cfg)
	assert.Equal(t, 1, cfg.MaxAttempts)
}
