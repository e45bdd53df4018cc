package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegntic/prompt-prompter-dd/config"
)

func TestRegistryHasGemini(t *testing.T) {
	assert.Contains(t, Registered(), "gemini")
}

func TestOpenUnknownProvider(t *testing.T) {
	_, err := Open(context.Background(), "nonexistent", config.NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestOpenGeminiWithoutKey(t *testing.T) {
	_, err := Open(context.Background(), "gemini", config.NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
