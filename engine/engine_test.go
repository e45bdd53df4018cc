package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegntic/prompt-prompter-dd/config"
	"github.com/aegntic/prompt-prompter-dd/providers"
	"github.com/aegntic/prompt-prompter-dd/telemetry"
	"github.com/aegntic/prompt-prompter-dd/utils"
)

// analyzerFixture wires an Analyzer from mocks. The primary provider serves
// both the execution call and the hallucination self-check, in that order.
type analyzerFixture struct {
	analyzer  *Analyzer
	primary   *providers.MockProvider
	optimizer *providers.MockProvider
	embedder  *providers.MockEmbedder
	recorder  *telemetry.Recorder
}

func newAnalyzerFixture(t *testing.T, opts ...config.ConfigOption) *analyzerFixture {
	t.Helper()
	cfg := config.NewConfig()
	config.SetRetryBaseDelay(0)(cfg)
	for _, opt := range opts {
		opt(cfg)
	}

	f := &analyzerFixture{
		primary:   &providers.MockProvider{},
		optimizer: &providers.MockProvider{},
		embedder:  providers.NewMockEmbedder([]float64{1, 0, 0}),
		recorder:  telemetry.NewRecorder(),
	}
	f.analyzer = NewAnalyzer(cfg, f.primary, f.optimizer, f.embedder,
		f.recorder, utils.NewLogger(utils.LogLevelOff))
	return f
}

func TestAnalyzeHighQualityPrompt(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.primary.QueueResponse("Here is the function you asked for.", &providers.Usage{InputTokens: 100, OutputTokens: 50})
	f.primary.QueueResponse("0.1", nil)

	report, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{
		Prompt:       richPrompt,
		AutoOptimize: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Here is the function you asked for.", report.Response)
	assert.Nil(t, report.Optimization, "high-scoring prompt must not trigger optimization")

	m := report.Metrics
	assert.Greater(t, m.AccuracyScore, 0.8)
	assert.LessOrEqual(t, m.AccuracyScore, 0.98)
	assert.InDelta(t, 1.0, m.SemanticSimilarity, 1e-9)
	assert.InDelta(t, 0.1, m.HallucinationScore, 1e-9)
	assert.Equal(t, 100, m.InputTokens)
	assert.Equal(t, 50, m.OutputTokens)
	assert.Equal(t, 150, m.TotalTokens)
	assert.InDelta(t, 0.00003, m.EstimatedCostUSD, 1e-9)

	assert.Equal(t, 2, f.primary.Invocations(), "one execution plus one hallucination check")
	assert.Equal(t, 0, f.optimizer.Invocations())
	assert.Empty(t, f.recorder.EventsTitled("Low Accuracy Score Detected"))

	for _, name := range []string{
		"prompt.accuracy", "prompt.semantic_similarity",
		"prompt.hallucination", "prompt.quality",
		"prompt.cost_usd",
	} {
		assert.Len(t, f.recorder.MetricsNamed(name), 1, name)
	}
	tokens := f.recorder.MetricsNamed("prompt.tokens")
	require.Len(t, tokens, 1)
	assert.Equal(t, 150.0, tokens[0].Value)
	assert.Contains(t, tokens[0].Tags, "type:total")
}

func TestAnalyzeLowQualityPromptTriggersOptimization(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.primary.QueueResponse("I fixed it.", nil)
	f.primary.QueueResponse("0.5", nil)
	f.optimizer.QueueResponse(`{"optimized_prompt":"Fix the null pointer in parse()","changes":"named the bug","expected_improvement":0.4}`, nil)

	report, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{
		Prompt:       "fix code",
		AutoOptimize: true,
	})

	require.NoError(t, err)
	require.NotNil(t, report.Optimization)
	assert.Equal(t, "Fix the null pointer in parse()", report.Optimization.OptimizedPrompt)
	assert.Equal(t, 1, f.optimizer.Invocations())

	events := f.recorder.EventsTitled("Low Accuracy Score Detected")
	require.Len(t, events, 1)
	assert.Equal(t, telemetry.AlertWarning, events[0].AlertType)
	assert.Len(t, f.recorder.MetricsNamed("prompt.optimizations"), 1)
}

func TestAnalyzeRespectsAutoOptimizeOff(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.primary.QueueResponse("I fixed it.", nil)
	f.primary.QueueResponse("0.5", nil)

	report, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{
		Prompt:       "fix code",
		AutoOptimize: false,
	})

	require.NoError(t, err)
	assert.Nil(t, report.Optimization)
	assert.Equal(t, 0, f.optimizer.Invocations())
	assert.Empty(t, f.recorder.EventsTitled("Low Accuracy Score Detected"))
}

func TestAnalyzeThresholdGating(t *testing.T) {
	// Only scores strictly below the threshold optimize.
	run := func(threshold float64) *AnalysisReport {
		f := newAnalyzerFixture(t, config.SetAccuracyThreshold(threshold))
		f.primary.QueueResponse("response", nil)
		f.primary.QueueResponse("0.0", nil)
		f.optimizer.QueueResponse(`{"optimized_prompt":"x","changes":"y","expected_improvement":0.2}`, nil)

		report, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{
			Prompt:       "fix code",
			AutoOptimize: true,
		})
		require.NoError(t, err)
		return report
	}

	low := run(0.0)
	assert.Nil(t, low.Optimization)

	high := run(0.99)
	assert.NotNil(t, high.Optimization)
}

func TestAnalyzeExpectedResponseDrivesExtraEmbeddings(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.primary.QueueResponse("response", nil)
	f.primary.QueueResponse("0.1", nil)

	_, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{
		Prompt:           richPrompt,
		ExpectedResponse: "the expected answer",
		AutoOptimize:     true,
	})

	require.NoError(t, err)
	// prompt+response for similarity, response+expected for response quality
	assert.Equal(t, 4, f.embedder.Embeddings())
}

func TestAnalyzeHighTokenUsageEvent(t *testing.T) {
	f := newAnalyzerFixture(t, config.SetTokenThreshold(100))
	f.primary.QueueResponse("response", &providers.Usage{InputTokens: 90, OutputTokens: 60})
	f.primary.QueueResponse("0.1", nil)

	_, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{Prompt: richPrompt})

	require.NoError(t, err)
	events := f.recorder.EventsTitled("High Token Usage Detected")
	require.Len(t, events, 1)
	assert.Equal(t, telemetry.AlertWarning, events[0].AlertType)
	assert.Contains(t, events[0].Tags, "tokens:150")
}

func TestAnalyzeHighLatencyEvent(t *testing.T) {
	f := newAnalyzerFixture(t, config.SetLatencyThresholdMS(-1))
	f.primary.QueueResponse("response", nil)
	f.primary.QueueResponse("0.1", nil)

	_, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{Prompt: richPrompt})

	require.NoError(t, err)
	assert.Len(t, f.recorder.EventsTitled("High Latency Detected"), 1)
}

func TestAnalyzeRejectsInvalidRequest(t *testing.T) {
	f := newAnalyzerFixture(t)

	_, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{Prompt: ""})

	require.Error(t, err)
	assert.Equal(t, ErrorTypeInvalidInput, TypeOf(err))
	assert.Equal(t, 0, f.primary.Invocations())
}

func TestAnalyzeEmbeddingFailureAbortsRun(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.embedder.DefaultVector = nil
	f.primary.QueueResponse("response", nil)

	report, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{Prompt: richPrompt})

	require.Error(t, err)
	assert.Nil(t, report, "no partial report on failure")
	assert.Equal(t, ErrorTypeEmbedding, TypeOf(err))
}

func TestAnalyzeExecutionFailureAbortsRun(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.primary.QueueError("invalid argument")

	report, err := f.analyzer.Analyze(context.Background(), AnalysisRequest{Prompt: richPrompt})

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, ErrorTypeUpstream, TypeOf(err))
	assert.Empty(t, f.recorder.MetricsNamed("prompt.accuracy"))
}
