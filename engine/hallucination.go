package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aegntic/prompt-prompter-dd/providers"
	"github.com/aegntic/prompt-prompter-dd/utils"
)

// neutralHallucinationScore is returned when the model's self-rating cannot
// be parsed. Hallucination scoring is fail-soft: a parse failure degrades to
// moderate uncertainty instead of aborting the analysis.
const neutralHallucinationScore = 0.5

const verificationPromptTemplate = `Analyze this response for potential hallucinations or unsupported claims.

Original question/prompt: %s

Response to analyze: %s

Rate the hallucination risk from 0.0 (factually grounded) to 1.0 (likely fabricated).
Respond with ONLY a decimal number between 0.0 and 1.0.`

// Checker asks the execution model to self-rate the factual grounding of its
// own answer. The verification call is made once, without retries.
type Checker struct {
	provider providers.CompletionProvider
	logger   utils.Logger
}

func NewChecker(provider providers.CompletionProvider, logger utils.Logger) *Checker {
	return &Checker{provider: provider, logger: logger}
}

// Check returns a hallucination risk score in [0, 1]: 0 is factually
// grounded, 1 is likely fabricated.
func (c *Checker) Check(ctx context.Context, prompt, response string) (float64, error) {
	verification := fmt.Sprintf(verificationPromptTemplate, prompt, response)
	completion, err := c.provider.Invoke(ctx, verification)
	if err != nil {
		return 0, NewEngineError(ErrorTypeUpstream, "hallucination check failed", err)
	}

	score, ok := firstFloat(completion.Content)
	if !ok {
		c.logger.Warn("hallucination rating was not numeric, using neutral default",
			"output", completion.Content)
		return neutralHallucinationScore, nil
	}
	return clamp(score, 0, 1), nil
}

// firstFloat returns the first parseable float in the trimmed text.
func firstFloat(text string) (float64, bool) {
	for _, tok := range strings.Fields(strings.TrimSpace(text)) {
		tok = strings.Trim(tok, ",;:!?()")
		tok = strings.TrimSuffix(tok, ".")
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
