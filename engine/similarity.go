package engine

import (
	"context"
	"math"

	"github.com/aegntic/prompt-prompter-dd/providers"
)

// SimilarityClient computes semantic similarity between two texts as the
// cosine of their embedding vectors. Embedding failures are not retried;
// they surface as EmbeddingError and abort the analysis.
type SimilarityClient struct {
	embedder providers.Embedder
}

func NewSimilarityClient(embedder providers.Embedder) *SimilarityClient {
	return &SimilarityClient{embedder: embedder}
}

// Similarity returns a value in [-1, 1].
func (c *SimilarityClient) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := c.embedder.Embed(ctx, a)
	if err != nil {
		return 0, NewEngineError(ErrorTypeEmbedding, "failed to embed text", err)
	}
	vb, err := c.embedder.Embed(ctx, b)
	if err != nil {
		return 0, NewEngineError(ErrorTypeEmbedding, "failed to embed text", err)
	}
	return cosineSimilarity(va, vb), nil
}

// cosineSimilarity returns 0 for mismatched or zero-magnitude vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
