package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/aegntic/prompt-prompter-dd/providers"
	"github.com/aegntic/prompt-prompter-dd/telemetry"
	"github.com/aegntic/prompt-prompter-dd/utils"
)

// fallbackExplanation and fallbackImprovement are used when the optimizer
// model replies with something other than the requested JSON object. The raw
// reply is then treated as the optimized prompt itself.
const (
	fallbackExplanation = "Model provided direct optimization"
	fallbackImprovement = 0.1
)

const optimizerSystemPrompt = `You are an expert prompt engineer. Your task is to optimize prompts for better clarity, specificity, and effectiveness.

When optimizing a prompt:
1. Add specific context and constraints
2. Clarify ambiguous language
3. Structure the request clearly
4. Reduce verbosity while maintaining meaning
5. Add output format specifications if helpful

Respond with a JSON object containing:
- "optimized_prompt": The improved prompt
- "changes": A brief explanation of what you changed and why
- "expected_improvement": A number from 0.0 to 1.0 indicating expected score improvement`

const optimizerUserTemplate = `Original prompt: %s

Current accuracy score: %.2f

Please optimize this prompt to achieve a higher accuracy score.`

// optimizerReply is the JSON shape the optimizer model is asked to produce.
type optimizerReply struct {
	OptimizedPrompt     string  `json:"optimized_prompt" jsonschema:"description=The improved prompt"`
	Changes             string  `json:"changes" jsonschema:"description=What was changed and why"`
	ExpectedImprovement float64 `json:"expected_improvement" jsonschema:"description=Expected score improvement between 0.0 and 1.0"`
}

// Optimizer rewrites low-scoring prompts using the low-temperature model.
// The call is made once, without retries; unparseable replies fall back
// instead of failing.
type Optimizer struct {
	provider providers.CompletionProvider
	sink     telemetry.Sink
	logger   utils.Logger
	tags     []string
	schema   string
}

func NewOptimizer(provider providers.CompletionProvider, sink telemetry.Sink, logger utils.Logger, tags []string) *Optimizer {
	schema, err := json.MarshalIndent(jsonschema.Reflect(&optimizerReply{}), "", "  ")
	if err != nil {
		// Reflection over a static struct cannot fail at runtime; guard anyway.
		schema = []byte("{}")
	}
	return &Optimizer{
		provider: provider,
		sink:     sink,
		logger:   logger,
		tags:     tags,
		schema:   string(schema),
	}
}

// Optimize asks the model to rewrite the prompt and parses the structured
// reply. currentScore is the accuracy score that triggered the rewrite.
func (o *Optimizer) Optimize(ctx context.Context, prompt string, currentScore float64) (*OptimizationResult, error) {
	message := fmt.Sprintf("%s\n\nRespond in JSON format according to this schema:\n%s\n\n%s",
		optimizerSystemPrompt, o.schema, fmt.Sprintf(optimizerUserTemplate, prompt, currentScore))

	completion, err := o.provider.Invoke(ctx, message)
	if err != nil {
		return nil, NewEngineError(ErrorTypeUpstream, "prompt optimization failed", err)
	}

	result := o.parseReply(prompt, completion.Content)

	o.sink.Incr("prompt.optimizations", o.tags)
	o.sink.Gauge("prompt.expected_improvement", result.ExpectedScoreImprovement, o.tags)
	return result, nil
}

// parseReply performs the two-stage decode: strip any surrounding code-fence
// markers, then parse JSON. Malformed replies degrade to the fallback result
// rather than surfacing an error.
func (o *Optimizer) parseReply(prompt, content string) *OptimizationResult {
	var reply optimizerReply
	if err := json.Unmarshal([]byte(stripFences(content)), &reply); err != nil {
		o.logger.Warn("failed to parse optimization response, using raw output", "error", err)
		return &OptimizationResult{
			OptimizedPrompt:          content,
			ImprovementExplanation:   fallbackExplanation,
			ExpectedScoreImprovement: fallbackImprovement,
		}
	}

	if reply.OptimizedPrompt == "" {
		reply.OptimizedPrompt = prompt
	}
	if reply.Changes == "" {
		reply.Changes = "Applied standard optimization techniques"
	}
	if reply.ExpectedImprovement == 0 {
		reply.ExpectedImprovement = fallbackImprovement
	}
	return &OptimizationResult{
		OptimizedPrompt:          reply.OptimizedPrompt,
		ImprovementExplanation:   reply.Changes,
		ExpectedScoreImprovement: clamp(reply.ExpectedImprovement, 0, 1),
	}
}

// stripFences removes a markdown code block wrapper if present, preferring a
// ```json fence over a bare one.
func stripFences(content string) string {
	if _, after, ok := strings.Cut(content, "```json"); ok {
		inner, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(inner)
	}
	if _, after, ok := strings.Cut(content, "```"); ok {
		inner, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(inner)
	}
	return strings.TrimSpace(content)
}
