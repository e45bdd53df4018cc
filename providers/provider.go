// Package providers wraps the upstream generative-model and embedding
// services behind small interfaces so the engine can be exercised against
// deterministic stand-ins in tests.
package providers

import "context"

// Usage carries provider-reported token accounting for one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Completion is a single model response. Usage is nil when the provider
// omitted usage metadata; callers are expected to estimate counts themselves.
type Completion struct {
	Content string
	Usage   *Usage
}

// CompletionProvider invokes a generative model with one user message.
// Implementations must be safe for concurrent use.
type CompletionProvider interface {
	Name() string
	Invoke(ctx context.Context, message string) (*Completion, error)
}

// Embedder turns text into an embedding vector. Implementations must be safe
// for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
