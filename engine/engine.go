// Package engine implements the prompt analysis pipeline: execute a prompt
// against the completion provider, score the prompt and response, estimate
// cost, and rewrite the prompt when its accuracy score falls below the
// configured bar. Telemetry is emitted along the way; emission never affects
// the result.
package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/aegntic/prompt-prompter-dd/config"
	"github.com/aegntic/prompt-prompter-dd/providers"
	"github.com/aegntic/prompt-prompter-dd/telemetry"
	"github.com/aegntic/prompt-prompter-dd/utils"
)

// accuracyCap keeps the blended accuracy score strictly below 1.0: no prompt
// is ever perfect.
const accuracyCap = 0.98

// accuracy blends prompt quality with response quality 90/10. Prompt quality
// dominates on purpose; see the scorer weighting note.
const (
	accuracyQualityWeight  = 0.90
	accuracyResponseWeight = 0.10
)

// Analyzer sequences one analysis run: Executing, Evaluating, Costing, an
// optional optimization step, then Reporting. The pipeline is strictly
// linear; an error at any step aborts the run with no partial report.
type Analyzer struct {
	executor   *Executor
	similarity *SimilarityClient
	checker    *Checker
	estimator  Estimator
	optimizer  *Optimizer
	sink       telemetry.Sink
	logger     utils.Logger
	tags       []string

	accuracyThreshold  float64
	tokenThreshold     int
	latencyThresholdMS float64
}

// NewAnalyzer wires the pipeline from its collaborators. primary handles
// execution and the hallucination self-check; rewriter handles optimization.
func NewAnalyzer(
	cfg *config.Config,
	primary providers.CompletionProvider,
	rewriter providers.CompletionProvider,
	embedder providers.Embedder,
	sink telemetry.Sink,
	logger utils.Logger,
) *Analyzer {
	tags := telemetry.BaseTags(cfg.DDService, cfg.DDEnv)
	return &Analyzer{
		executor: NewExecutor(primary, sink, logger, ExecutorConfig{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			Tags:        tags,
		}),
		similarity: NewSimilarityClient(embedder),
		checker:    NewChecker(primary, logger),
		estimator: Estimator{
			InputPricePerMillion:  cfg.InputPricePerMillion,
			OutputPricePerMillion: cfg.OutputPricePerMillion,
		},
		optimizer:          NewOptimizer(rewriter, sink, logger, tags),
		sink:               sink,
		logger:             logger,
		tags:               tags,
		accuracyThreshold:  cfg.AccuracyThreshold,
		tokenThreshold:     cfg.TokenThreshold,
		latencyThresholdMS: cfg.LatencyThresholdMS,
	}
}

// Analyze runs the full pipeline for one request.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Executing
	execution, err := a.executor.Execute(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}

	// Evaluating
	evaluation, err := a.evaluate(ctx, req, execution.Text)
	if err != nil {
		return nil, err
	}

	// Costing
	totalTokens := execution.InputTokens + execution.OutputTokens
	cost := a.estimator.Estimate(execution.InputTokens, execution.OutputTokens)
	a.sink.Gauge("prompt.cost_usd", cost, a.tags)
	a.sink.Count("prompt.tokens", int64(totalTokens), telemetry.With(a.tags, "type:total"))

	accuracy := math.Min(evaluation.AccuracyScore, accuracyCap)

	metrics := MetricsBreakdown{
		AccuracyScore:      roundTo(accuracy, 4),
		SemanticSimilarity: roundTo(evaluation.SemanticSimilarity, 4),
		HallucinationScore: roundTo(evaluation.HallucinationScore, 4),
		InputTokens:        execution.InputTokens,
		OutputTokens:       execution.OutputTokens,
		TotalTokens:        totalTokens,
		LatencyMS:          roundTo(execution.LatencyMS, 2),
		EstimatedCostUSD:   roundTo(cost, 6),
	}

	// Optimizing, when requested and the score is below the bar.
	var optimization *OptimizationResult
	if req.AutoOptimize && accuracy < a.accuracyThreshold {
		a.logger.Info("accuracy below threshold, triggering optimization",
			"score", accuracy, "threshold", a.accuracyThreshold)
		optimization, err = a.optimizer.Optimize(ctx, req.Prompt, accuracy)
		if err != nil {
			return nil, err
		}
		a.sink.Event("Low Accuracy Score Detected",
			fmt.Sprintf("Prompt scored %.2f, below threshold. Auto-optimization triggered.", accuracy),
			telemetry.AlertWarning,
			telemetry.With(a.tags, fmt.Sprintf("score:%.2f", accuracy)))
	}

	// The token and latency checks are independent of each other and of the
	// optimization gate; any combination may fire for one request.
	if totalTokens > a.tokenThreshold {
		a.sink.Event("High Token Usage Detected",
			fmt.Sprintf("Request used %d tokens (> %d threshold)", totalTokens, a.tokenThreshold),
			telemetry.AlertWarning,
			telemetry.With(a.tags, fmt.Sprintf("tokens:%d", totalTokens)))
	}
	if execution.LatencyMS > a.latencyThresholdMS {
		a.sink.Event("High Latency Detected",
			fmt.Sprintf("Request took %.0fms (> %.0fms threshold)", execution.LatencyMS, a.latencyThresholdMS),
			telemetry.AlertWarning,
			telemetry.With(a.tags, fmt.Sprintf("latency:%.0f", execution.LatencyMS)))
	}

	// Reporting
	return &AnalysisReport{
		Response:     execution.Text,
		Metrics:      metrics,
		Optimization: optimization,
	}, nil
}

// evaluate scores the prompt heuristically, measures semantic similarity and
// runs the hallucination self-check. Response quality is the similarity of
// the response to the expected response when one was supplied, otherwise the
// prompt-response coherence.
func (a *Analyzer) evaluate(ctx context.Context, req AnalysisRequest, response string) (EvaluationResult, error) {
	quality := ScorePrompt(req.Prompt)

	promptResponseSim, err := a.similarity.Similarity(ctx, req.Prompt, response)
	if err != nil {
		return EvaluationResult{}, err
	}

	responseQuality := promptResponseSim
	if req.ExpectedResponse != "" {
		responseQuality, err = a.similarity.Similarity(ctx, response, req.ExpectedResponse)
		if err != nil {
			return EvaluationResult{}, err
		}
	}

	accuracy := clamp(accuracyQualityWeight*quality.Overall+accuracyResponseWeight*responseQuality, 0, accuracyCap)

	hallucination, err := a.checker.Check(ctx, req.Prompt, response)
	if err != nil {
		return EvaluationResult{}, err
	}

	a.sink.Gauge("prompt.accuracy", accuracy, a.tags)
	a.sink.Gauge("prompt.semantic_similarity", promptResponseSim, a.tags)
	a.sink.Gauge("prompt.hallucination", hallucination, a.tags)
	a.sink.Gauge("prompt.quality", quality.Overall, a.tags)

	return EvaluationResult{
		AccuracyScore:      accuracy,
		SemanticSimilarity: promptResponseSim,
		HallucinationScore: hallucination,
	}, nil
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
