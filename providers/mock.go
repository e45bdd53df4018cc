package providers

import (
	"context"
	"errors"
	"sync"
)

// MockProvider implements CompletionProvider for tests. Responses and errors
// are consumed in the order they were scripted; once the script is exhausted
// the final entry repeats.
type MockProvider struct {
	mu      sync.Mutex
	script  []mockStep
	cursor  int
	invokes int
}

type mockStep struct {
	completion *Completion
	err        error
}

// NewMockProvider returns a provider with a single default response.
func NewMockProvider() *MockProvider {
	p := &MockProvider{}
	p.QueueResponse("This is a mock response", nil)
	return p
}

func (p *MockProvider) Name() string { return "mock" }

// QueueResponse appends a successful completion to the script. usage may be
// nil to simulate a provider that omits usage metadata.
func (p *MockProvider) QueueResponse(content string, usage *Usage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.script = append(p.script, mockStep{completion: &Completion{Content: content, Usage: usage}})
}

// QueueError appends a failure to the script.
func (p *MockProvider) QueueError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.script = append(p.script, mockStep{err: errors.New(message)})
}

// Reset clears the script and counters.
func (p *MockProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.script = nil
	p.cursor = 0
	p.invokes = 0
}

// Invocations reports how many times Invoke has been called.
func (p *MockProvider) Invocations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.invokes
}

func (p *MockProvider) Invoke(_ context.Context, _ string) (*Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invokes++
	if len(p.script) == 0 {
		return nil, errors.New("mock: no scripted responses")
	}
	step := p.script[p.cursor]
	if p.cursor < len(p.script)-1 {
		p.cursor++
	}
	if step.err != nil {
		return nil, step.err
	}
	return step.completion, nil
}

// MockEmbedder implements Embedder with a fixed vector per input text.
// Unknown texts fall back to DefaultVector; a nil DefaultVector makes the
// call fail, which is how tests exercise embedding errors.
type MockEmbedder struct {
	mu            sync.Mutex
	Vectors       map[string][]float64
	DefaultVector []float64
	embeds        int
}

func NewMockEmbedder(defaultVector []float64) *MockEmbedder {
	return &MockEmbedder{
		Vectors:       make(map[string][]float64),
		DefaultVector: defaultVector,
	}
}

// SetVector scripts the embedding returned for an exact input text.
func (e *MockEmbedder) SetVector(text string, vec []float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Vectors[text] = vec
}

// Embeddings reports how many times Embed has been called.
func (e *MockEmbedder) Embeddings() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.embeds
}

func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.embeds++
	if vec, ok := e.Vectors[text]; ok {
		return vec, nil
	}
	if e.DefaultVector == nil {
		return nil, errors.New("mock: embedding unavailable")
	}
	return e.DefaultVector, nil
}
