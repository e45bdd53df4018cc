package engine

import (
	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance used across the package.
var validate = validator.New()

// AnalysisRequest is one unit of work for the analyzer. The prompt is owned
// by the caller for the duration of the call and is never persisted.
type AnalysisRequest struct {
	Prompt           string `json:"prompt" validate:"required,min=1,max=10000"`
	ExpectedResponse string `json:"expected_response,omitempty"`
	AutoOptimize     bool   `json:"auto_optimize"`
}

// Validate checks the request against its field constraints.
func (r AnalysisRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return NewEngineError(ErrorTypeInvalidInput, "invalid analysis request", err)
	}
	return nil
}

// CompletionResult captures one successful model execution. Token counts are
// provider-reported when available, otherwise estimated from word counts.
type CompletionResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	LatencyMS    float64
}

// QualityBreakdown is the heuristic quality score of a prompt, each dimension
// in [0, 0.98]. Overall is the weighted sum of the other four.
type QualityBreakdown struct {
	Length      float64
	Specificity float64
	Context     float64
	Clarity     float64
	Structure   float64
	Overall     float64
}

// EvaluationResult combines the evaluation signals for one prompt/response
// pair.
type EvaluationResult struct {
	AccuracyScore      float64
	SemanticSimilarity float64
	HallucinationScore float64
}

// MetricsBreakdown is the externally visible metrics block of a report.
type MetricsBreakdown struct {
	AccuracyScore      float64 `json:"accuracy_score"`
	SemanticSimilarity float64 `json:"semantic_similarity"`
	HallucinationScore float64 `json:"hallucination_score"`
	InputTokens        int     `json:"input_tokens"`
	OutputTokens       int     `json:"output_tokens"`
	TotalTokens        int     `json:"total_tokens"`
	LatencyMS          float64 `json:"latency_ms"`
	EstimatedCostUSD   float64 `json:"estimated_cost_usd"`
}

// OptimizationResult is the outcome of a prompt rewrite. Present on a report
// only when optimization was triggered.
type OptimizationResult struct {
	OptimizedPrompt          string  `json:"optimized_prompt"`
	ImprovementExplanation   string  `json:"improvement_explanation"`
	ExpectedScoreImprovement float64 `json:"expected_score_improvement"`
}

// AnalysisReport is the aggregate result of one analysis run. It has no
// lifecycle beyond the call that produced it.
type AnalysisReport struct {
	Response     string              `json:"llm_response"`
	Metrics      MetricsBreakdown    `json:"metrics"`
	Optimization *OptimizationResult `json:"optimization,omitempty"`
}
