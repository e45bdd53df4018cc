package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const richPrompt = "Write a Python function that parses a JSON file and returns a list of user records.\nRequirements:\n1. Validate the schema of each record.\n2. Return an error for malformed input.\n3. Include a detailed docstring and one example call."

func TestScorePromptVague(t *testing.T) {
	breakdown := ScorePrompt("fix code")

	assert.Less(t, breakdown.Overall, 0.10)
	assert.InDelta(t, 0.04, breakdown.Length, 1e-9)
	assert.InDelta(t, 0.05, breakdown.Specificity, 1e-9)
	assert.Zero(t, breakdown.Context)
	assert.InDelta(t, 0.2, breakdown.Clarity, 1e-9)
	assert.Zero(t, breakdown.Structure)
}

func TestScorePromptRich(t *testing.T) {
	breakdown := ScorePrompt(richPrompt)

	assert.GreaterOrEqual(t, breakdown.Overall, 0.85)
	assert.InDelta(t, 0.98, breakdown.Specificity, 1e-9)
	assert.InDelta(t, 0.98, breakdown.Context, 1e-9)
	assert.InDelta(t, 0.98, breakdown.Structure, 1e-9)
}

func TestScorePromptDeterministic(t *testing.T) {
	first := ScorePrompt(richPrompt)
	second := ScorePrompt(richPrompt)
	assert.Equal(t, first, second)
}

func TestScorePromptBounds(t *testing.T) {
	prompts := []string{
		"",
		"fix code",
		"help",
		richPrompt,
		"specifically exactly detailed comprehensive step-by-step specifically exactly detailed",
	}
	for _, p := range prompts {
		breakdown := ScorePrompt(p)
		for name, v := range map[string]float64{
			"length":      breakdown.Length,
			"specificity": breakdown.Specificity,
			"context":     breakdown.Context,
			"clarity":     breakdown.Clarity,
			"structure":   breakdown.Structure,
			"overall":     breakdown.Overall,
		} {
			require.GreaterOrEqual(t, v, 0.0, "%s for %q", name, p)
			require.LessOrEqual(t, v, 0.98, "%s for %q", name, p)
		}
	}
}

func TestScorePromptSpecificityBeatsLength(t *testing.T) {
	vague := ScorePrompt("please help me with my stuff it is not working good and I would like you to make it better somehow thanks a lot")
	technical := ScorePrompt("Write a Python function to parse JSON logs.")

	assert.Greater(t, technical.Overall, vague.Overall)
}

func TestScorePromptStructureSignals(t *testing.T) {
	assert.Zero(t, ScorePrompt("describe the api").Structure)
	assert.InDelta(t, 0.3, ScorePrompt("describe the api.").Structure, 1e-9)
	assert.InDelta(t, 0.6, ScorePrompt("describe the api.\nthen the schema").Structure, 1e-9)
	assert.InDelta(t, 0.98, ScorePrompt("steps:\n1. describe the api.\n2. describe the schema.").Structure, 1e-9)
}

func TestScorePromptPrecisionWordsLiftClarity(t *testing.T) {
	base := ScorePrompt("write a function to parse logs")
	precise := ScorePrompt("write a detailed function to specifically parse logs")

	assert.Greater(t, precise.Clarity, base.Clarity)
}

func TestScorePromptEmpty(t *testing.T) {
	breakdown := ScorePrompt("")
	assert.Zero(t, breakdown.Length)
	assert.Zero(t, breakdown.Specificity)
	assert.Zero(t, breakdown.Overall)
}
