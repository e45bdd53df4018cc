// Package prompter is the high-level entry point for prompt analysis. It
// wires configuration, the Gemini provider bundle, telemetry and the analysis
// engine into a single Engine value.
package prompter

import (
	"context"
	"sync"

	"github.com/aegntic/prompt-prompter-dd/config"
	"github.com/aegntic/prompt-prompter-dd/engine"
	"github.com/aegntic/prompt-prompter-dd/providers"
	"github.com/aegntic/prompt-prompter-dd/telemetry"
	"github.com/aegntic/prompt-prompter-dd/utils"
)

// Engine is a ready-to-use analysis pipeline. Safe for concurrent use.
type Engine struct {
	analyzer *engine.Analyzer
	cfg      *config.Config
	logger   utils.Logger

	// bundle is non-nil only when the engine owns the provider connection.
	bundle providers.Bundle
	closed bool
	mu     sync.Mutex
}

// Option customizes engine construction.
type Option func(*options)

type options struct {
	logger    utils.Logger
	sink      telemetry.Sink
	primary   providers.CompletionProvider
	optimizer providers.CompletionProvider
	embedder  providers.Embedder
}

// WithLogger replaces the default stderr logger.
func WithLogger(logger utils.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSink replaces the default no-op telemetry sink.
func WithSink(sink telemetry.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithProviders injects model handles directly, bypassing the Gemini dial.
// All three must be supplied together.
func WithProviders(primary, optimizer providers.CompletionProvider, embedder providers.Embedder) Option {
	return func(o *options) {
		o.primary = primary
		o.optimizer = optimizer
		o.embedder = embedder
	}
}

// New builds an Engine from cfg. Unless WithProviders is given, it dials the
// configured provider and owns that connection; Close releases it.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Engine, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = utils.NewLogger(cfg.LogLevel)
	}
	if o.sink == nil {
		o.sink = telemetry.NopSink{}
	}

	e := &Engine{cfg: cfg, logger: o.logger}
	if o.primary == nil {
		bundle, err := providers.Open(ctx, cfg.Provider, cfg)
		if err != nil {
			return nil, err
		}
		e.bundle = bundle
		o.primary = bundle.Primary()
		o.optimizer = bundle.Optimizer()
		o.embedder = bundle.Embedder()
	}

	e.analyzer = engine.NewAnalyzer(cfg, o.primary, o.optimizer, o.embedder, o.sink, o.logger)
	return e, nil
}

// Analyze runs the full analysis pipeline for one request.
func (e *Engine) Analyze(ctx context.Context, req engine.AnalysisRequest) (*engine.AnalysisReport, error) {
	return e.analyzer.Analyze(ctx, req)
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Healthy reports whether the engine can serve requests.
func (e *Engine) Healthy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed
}

// Close releases the provider connection if the engine owns one. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.bundle != nil {
		return e.bundle.Close()
	}
	return nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

// Default returns a process-wide Engine configured from the environment,
// constructing it on first call. The statsd sink is attached when an agent
// address is configured; sink dial failures degrade to no telemetry rather
// than failing startup.
func Default(ctx context.Context) (*Engine, error) {
	defaultOnce.Do(func() {
		cfg, err := config.LoadConfig()
		if err != nil {
			defaultErr = err
			return
		}
		logger := utils.NewLogger(cfg.LogLevel)

		var sink telemetry.Sink = telemetry.NopSink{}
		if cfg.StatsdAddr != "" {
			statsdSink, err := telemetry.NewStatsdSink(cfg.StatsdAddr, logger)
			if err != nil {
				logger.Warn("statsd unavailable, telemetry disabled", "addr", cfg.StatsdAddr, "error", err)
			} else {
				sink = statsdSink
			}
		}

		defaultEngine, defaultErr = New(ctx, cfg, WithLogger(logger), WithSink(sink))
	})
	return defaultEngine, defaultErr
}
