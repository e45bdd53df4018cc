// Package config loads engine configuration from the environment and exposes
// functional options for overriding individual settings in code.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aegntic/prompt-prompter-dd/utils"
)

// Config holds every tunable of the analysis engine. Defaults match the
// production deployment; any field can be overridden through the environment
// or a ConfigOption.
type Config struct {
	// Telemetry
	DDService  string `env:"DD_SERVICE" envDefault:"prompt-prompter"`
	DDEnv      string `env:"DD_ENV" envDefault:"dev"`
	StatsdAddr string `env:"DD_STATSD_ADDR" envDefault:"127.0.0.1:8125"`

	// Provider
	Provider       string  `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey   string  `env:"GEMINI_API_KEY"`
	GeminiModel    string  `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-exp"`
	OptimizerModel string  `env:"OPTIMIZER_MODEL" envDefault:"gemini-2.0-flash-exp"`
	EmbeddingModel string  `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	Temperature    float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	// OptimizerTemperature is kept low so rewrites stay consistent run to run.
	OptimizerTemperature float64       `env:"OPTIMIZER_TEMPERATURE" envDefault:"0.3"`
	MaxOutputTokens      int           `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	Timeout              time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Retry policy for the primary completion call. MaxAttempts counts the
	// first call, so 3 means at most two retries.
	MaxAttempts    int           `env:"LLM_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"LLM_RETRY_BASE_DELAY" envDefault:"1s"`

	// Alerting thresholds
	AccuracyThreshold  float64 `env:"ACCURACY_THRESHOLD" envDefault:"0.8"`
	TokenThreshold     int     `env:"TOKEN_THRESHOLD" envDefault:"1000"`
	LatencyThresholdMS float64 `env:"LATENCY_THRESHOLD_MS" envDefault:"2000"`

	// Pricing per one million tokens, in USD.
	InputPricePerMillion  float64 `env:"INPUT_PRICE_PER_MILLION" envDefault:"0.10"`
	OutputPricePerMillion float64 `env:"OUTPUT_PRICE_PER_MILLION" envDefault:"0.40"`

	// HTTP surface
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"7860"`

	LogLevel utils.LogLevel `env:"LOG_LEVEL" envDefault:"INFO"`
}

// LoadConfig builds a Config from the process environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// NewConfig returns a Config with compiled-in defaults, ignoring the
// environment. Useful for tests and explicit wiring.
func NewConfig() *Config {
	return &Config{
		DDService:             "prompt-prompter",
		DDEnv:                 "dev",
		StatsdAddr:            "127.0.0.1:8125",
		Provider:              "gemini",
		GeminiModel:           "gemini-2.0-flash-exp",
		OptimizerModel:        "gemini-2.0-flash-exp",
		EmbeddingModel:        "text-embedding-004",
		Temperature:           0.7,
		OptimizerTemperature:  0.3,
		MaxOutputTokens:       2048,
		Timeout:               60 * time.Second,
		MaxAttempts:           3,
		RetryBaseDelay:        time.Second,
		AccuracyThreshold:     0.8,
		TokenThreshold:        1000,
		LatencyThresholdMS:    2000,
		InputPricePerMillion:  0.10,
		OutputPricePerMillion: 0.40,
		Host:                  "0.0.0.0",
		Port:                  7860,
		LogLevel:              utils.LogLevelInfo,
	}
}

// ConfigOption mutates a Config.
type ConfigOption func(*Config)

func SetGeminiAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.GeminiAPIKey = key
	}
}

func SetGeminiModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeminiModel = model
	}
}

func SetOptimizerModel(model string) ConfigOption {
	return func(c *Config) {
		c.OptimizerModel = model
	}
}

func SetEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func SetMaxAttempts(attempts int) ConfigOption {
	return func(c *Config) {
		if attempts < 1 {
			attempts = 1
		}
		c.MaxAttempts = attempts
	}
}

func SetRetryBaseDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryBaseDelay = delay
	}
}

func SetAccuracyThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.AccuracyThreshold = threshold
	}
}

func SetTokenThreshold(threshold int) ConfigOption {
	return func(c *Config) {
		c.TokenThreshold = threshold
	}
}

func SetLatencyThresholdMS(threshold float64) ConfigOption {
	return func(c *Config) {
		c.LatencyThresholdMS = threshold
	}
}

func SetPricing(inputPerMillion, outputPerMillion float64) ConfigOption {
	return func(c *Config) {
		c.InputPricePerMillion = inputPerMillion
		c.OutputPricePerMillion = outputPerMillion
	}
}

func SetStatsdAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.StatsdAddr = addr
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}
