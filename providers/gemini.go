package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/aegntic/prompt-prompter-dd/config"
)

// Gemini bundles the three model handles the engine needs on one shared
// genai client: the primary execution model, the lower-temperature optimizer
// model and the embedding model. The client is long-lived and safe for
// concurrent use.
type Gemini struct {
	client    *genai.Client
	primary   *GeminiModel
	optimizer *GeminiModel
	embedder  *GeminiEmbedder
}

// NewGemini dials the Generative Language API with the configured key.
func NewGemini(ctx context.Context, cfg *config.Config) (*Gemini, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("providers: GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("providers: genai client: %w", err)
	}

	primary := client.GenerativeModel(cfg.GeminiModel)
	primary.SetTemperature(float32(cfg.Temperature))
	primary.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))

	optimizer := client.GenerativeModel(cfg.OptimizerModel)
	optimizer.SetTemperature(float32(cfg.OptimizerTemperature))
	optimizer.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))

	return &Gemini{
		client:    client,
		primary:   &GeminiModel{name: cfg.GeminiModel, model: primary},
		optimizer: &GeminiModel{name: cfg.OptimizerModel, model: optimizer},
		embedder:  &GeminiEmbedder{model: client.EmbeddingModel(cfg.EmbeddingModel)},
	}, nil
}

// Primary returns the execution model (also used for the hallucination
// self-check).
func (g *Gemini) Primary() CompletionProvider { return g.primary }

// Optimizer returns the low-temperature rewrite model.
func (g *Gemini) Optimizer() CompletionProvider { return g.optimizer }

// Embedder returns the embedding model handle.
func (g *Gemini) Embedder() Embedder { return g.embedder }

// Close releases the underlying client connection.
func (g *Gemini) Close() error { return g.client.Close() }

// GeminiModel adapts one genai generative model to CompletionProvider.
type GeminiModel struct {
	name  string
	model *genai.GenerativeModel
}

func (m *GeminiModel) Name() string { return m.name }

func (m *GeminiModel) Invoke(ctx context.Context, message string) (*Completion, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	var parts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("gemini: response contained no text content")
	}

	completion := &Completion{Content: strings.Join(parts, "")}
	if resp.UsageMetadata != nil {
		completion.Usage = &Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return completion, nil
}

// GeminiEmbedder adapts the genai embedding model to Embedder.
type GeminiEmbedder struct {
	model *genai.EmbeddingModel
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini: embed content: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini: embedding response was empty")
	}
	vec := make([]float64, len(resp.Embedding.Values))
	for i, v := range resp.Embedding.Values {
		vec[i] = float64(v)
	}
	return vec, nil
}
