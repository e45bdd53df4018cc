package engine

import (
	"math"
	"regexp"
	"strings"
)

// Heuristic prompt scoring. ScorePrompt is pure and deterministic: the same
// prompt text always yields the same breakdown, with every dimension capped
// at 0.98 so no prompt ever scores a perfect 1.0.
//
// The overall weighting deliberately favors specificity over raw length: a
// vague but long prompt must not outscore a short but technical one.
const (
	weightSpecificity = 0.40
	weightLength      = 0.25
	weightContext     = 0.15
	weightClarity     = 0.10
	weightStructure   = 0.10

	scoreCap = 0.98
)

// stopWords are articles, pronouns, modal/connective filler and greetings
// stripped before counting meaningful words.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"i": true, "me": true, "my": true, "mine": true,
	"you": true, "your": true, "yours": true,
	"he": true, "him": true, "his": true,
	"she": true, "her": true, "hers": true,
	"it": true, "its": true,
	"we": true, "us": true, "our": true,
	"they": true, "them": true, "their": true,
	"this": true, "that": true, "these": true, "those": true,
	"is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "am": true,
	"do": true, "does": true, "did": true,
	"can": true, "could": true, "will": true, "would": true,
	"shall": true, "should": true, "may": true, "might": true, "must": true,
	"and": true, "or": true, "but": true, "if": true, "then": true, "so": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "by": true,
	"for": true, "with": true, "about": true, "as": true, "from": true,
	"please": true, "hello": true, "hi": true, "hey": true,
	"thanks": true, "thank": true,
}

// specificityIndicators are technical, action, context and constraint terms.
// Matching is by lowercase token prefix so plurals and simple suffixes count.
var specificityIndicators = []string{
	"function", "code", "error", "bug", "api", "database", "sql", "query",
	"python", "javascript", "typescript", "java", "golang", "bash", "json",
	"algorithm", "class", "method", "variable", "server", "endpoint",
	"test", "string", "integer", "array", "schema", "table", "regex",
	"analyze", "explain", "write", "create", "implement", "generate",
	"describe", "compare", "summarize", "calculate", "convert", "list",
	"should", "must", "require", "constraint", "format", "output", "input",
	"example", "step", "specific", "parameter", "return", "paragraph",
}

// vagueWords signal an underspecified request. Counted against meaningful
// words only, so stop words never inflate the ratio.
var vagueWords = map[string]bool{
	"fix": true, "help": true, "thing": true, "things": true,
	"stuff": true, "something": true, "anything": true, "everything": true,
	"nothing": true, "whatever": true, "somehow": true, "maybe": true,
	"better": true, "good": true, "nice": true, "bad": true,
	"broken": true, "work": true, "works": true,
}

// precisionWords counteract vagueness when present.
var precisionWords = []string{
	"specifically", "exactly", "step-by-step", "detailed", "comprehensive",
}

var numberedListRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s`)

// ScorePrompt computes the five-dimension quality breakdown for a prompt.
func ScorePrompt(text string) QualityBreakdown {
	tokens := normalizeTokens(text)
	meaningful := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !stopWords[tok] {
			meaningful = append(meaningful, tok)
		}
	}

	breakdown := QualityBreakdown{
		Length:      lengthScore(len(meaningful)),
		Specificity: specificityScore(tokens),
		Context:     contextScore(text),
		Clarity:     clarityScore(text, meaningful),
		Structure:   structureScore(text),
	}
	breakdown.Overall = clamp(
		weightSpecificity*breakdown.Specificity+
			weightLength*breakdown.Length+
			weightContext*breakdown.Context+
			weightClarity*breakdown.Clarity+
			weightStructure*breakdown.Structure,
		0, scoreCap)
	return breakdown
}

// normalizeTokens splits on whitespace, lowercases and trims surrounding
// punctuation. Tokens that are pure punctuation are dropped.
func normalizeTokens(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.Trim(strings.ToLower(f), ".,!?;:\"'()[]{}")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// lengthScore is piecewise-linear in the meaningful word count: very short
// prompts score near zero, the sweet spot is 11-20 words, and the curve
// flattens beyond that.
func lengthScore(n int) float64 {
	switch {
	case n <= 2:
		return float64(n) * 0.02
	case n <= 5:
		return 0.05 + float64(n-2)*0.08
	case n <= 10:
		return 0.30 + float64(n-5)*0.10
	case n <= 20:
		return math.Min(scoreCap, 0.80+float64(n-10)*0.02)
	default:
		return math.Min(scoreCap, 0.90+float64(n-20)*0.004)
	}
}

func specificityScore(tokens []string) float64 {
	matches := 0
	for _, tok := range tokens {
		for _, indicator := range specificityIndicators {
			if strings.HasPrefix(tok, indicator) {
				matches++
				break
			}
		}
	}
	if matches < 2 {
		return float64(matches) * 0.05
	}
	return math.Min(scoreCap, 0.10+float64(matches)*0.12)
}

// contextScore counts structural and code indicators in the raw text: code
// fences, definitions, brackets, assignments, causal connectives, newlines
// and list markers.
func contextScore(text string) float64 {
	matches := strings.Count(text, "```") +
		strings.Count(text, "def ") +
		strings.Count(text, "(") +
		strings.Count(text, "[") +
		strings.Count(text, "{") +
		strings.Count(text, "=") +
		strings.Count(text, "because") +
		strings.Count(text, "since") +
		strings.Count(text, "therefore") +
		strings.Count(text, "\n") +
		strings.Count(text, "\n- ") +
		strings.Count(text, "\n* ") +
		len(numberedListRe.FindAllString(text, -1))
	return math.Min(scoreCap, float64(matches)*0.15)
}

func clarityScore(text string, meaningful []string) float64 {
	vague := 0
	for _, tok := range meaningful {
		if vagueWords[tok] {
			vague++
		}
	}
	ratio := float64(vague) / math.Max(float64(len(meaningful)), 1)

	var score float64
	switch {
	case ratio > 0.5:
		score = 0.0
	case ratio > 0.3:
		score = 0.2
	case ratio > 0.1:
		score = 0.5
	default:
		score = 0.8
	}

	lower := strings.ToLower(text)
	for _, w := range precisionWords {
		score += 0.1 * float64(strings.Count(lower, w))
	}
	return math.Min(scoreCap, score)
}

func structureScore(text string) float64 {
	var score float64
	if strings.ContainsAny(text, ".!?") {
		score += 0.3
	}
	if strings.Contains(text, "\n") {
		score += 0.3
	}
	if numberedListRe.MatchString(text) {
		score += 0.4
	}
	return math.Min(scoreCap, score)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
