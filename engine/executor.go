package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aegntic/prompt-prompter-dd/providers"
	"github.com/aegntic/prompt-prompter-dd/telemetry"
	"github.com/aegntic/prompt-prompter-dd/utils"
)

// wordsPerToken is the rough word-to-token ratio used when the provider
// omits usage metadata.
const wordsPerToken = 1.3

// ExecutorConfig tunes the retry and rate-limit behavior of an Executor.
type ExecutorConfig struct {
	// MaxAttempts is the total number of provider calls, including the
	// first. Values below 1 are treated as 1.
	MaxAttempts int
	// BaseDelay is the backoff before the first retry; each further retry
	// doubles it.
	BaseDelay time.Duration
	// RateLimit caps outbound provider calls. Zero means unlimited.
	RateLimit rate.Limit
	RateBurst int
	// Tags are attached to every metric emission.
	Tags []string
}

// Executor runs a prompt against the completion provider with bounded
// retries and exponential backoff. Only failures classified as rate-limit or
// transient are retried; anything else propagates immediately.
type Executor struct {
	provider    providers.CompletionProvider
	limiter     *rate.Limiter
	sink        telemetry.Sink
	logger      utils.Logger
	tags        []string
	maxAttempts int
	baseDelay   time.Duration

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor(provider providers.CompletionProvider, sink telemetry.Sink, logger utils.Logger, cfg ExecutorConfig) *Executor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	limit := cfg.RateLimit
	if limit == 0 {
		limit = rate.Inf
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &Executor{
		provider:    provider,
		limiter:     rate.NewLimiter(limit, burst),
		sink:        sink,
		logger:      logger,
		tags:        cfg.Tags,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		sleep:       sleepContext,
	}
}

// Execute invokes the provider and normalizes the result. Latency covers the
// successful attempt only; the timer starts after any backoff and rate-limit
// wait for that attempt.
func (e *Executor) Execute(ctx context.Context, prompt string) (*CompletionResult, error) {
	var lastErr error
	var lastType ErrorType

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := e.baseDelay << (attempt - 1)
			e.logger.Debug("retrying prompt execution", "attempt", attempt+1, "delay", delay)
			if err := e.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		completion, err := e.provider.Invoke(ctx, prompt)
		if err == nil {
			latency := time.Since(start)
			result := e.normalize(prompt, completion, latency)
			e.sink.Timing("prompt.latency_ms", latency, telemetry.With(e.tags, "operation:execute"))
			e.sink.Incr("prompt.requests", e.tags)
			return result, nil
		}

		errType, reason, retryable := classifyRetry(err)
		if !retryable {
			return nil, NewEngineError(ErrorTypeUpstream, "prompt execution failed", err)
		}
		lastErr = err
		lastType = errType
		if attempt < e.maxAttempts-1 {
			e.logger.Warn("prompt execution attempt failed", "attempt", attempt+1, "reason", reason, "error", err)
			e.sink.Incr("prompt.retries", telemetry.With(e.tags, "reason:"+reason))
		}
	}

	return nil, NewEngineError(lastType,
		fmt.Sprintf("prompt execution failed after %d attempts", e.maxAttempts), lastErr)
}

func (e *Executor) normalize(prompt string, completion *providers.Completion, latency time.Duration) *CompletionResult {
	var in, out int
	if completion.Usage != nil {
		in = completion.Usage.InputTokens
		out = completion.Usage.OutputTokens
	}
	if in == 0 {
		in = estimateTokens(prompt)
	}
	if out == 0 {
		out = estimateTokens(completion.Content)
	}
	return &CompletionResult{
		Text:         completion.Content,
		InputTokens:  in,
		OutputTokens: out,
		LatencyMS:    float64(latency.Microseconds()) / 1000.0,
	}
}

// estimateTokens approximates a token count from whitespace-separated words.
func estimateTokens(text string) int {
	return int(math.Round(float64(len(strings.Fields(text))) * wordsPerToken))
}

// sleepContext blocks for d without occupying the goroutine's thread,
// returning early if the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
