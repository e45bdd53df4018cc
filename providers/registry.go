package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aegntic/prompt-prompter-dd/config"
)

// Bundle is the set of model handles one vendor contributes: the execution
// model, the low-temperature optimizer model and the embedding model.
type Bundle interface {
	Primary() CompletionProvider
	Optimizer() CompletionProvider
	Embedder() Embedder
	Close() error
}

// Constructor dials a vendor and returns its model bundle.
type Constructor func(ctx context.Context, cfg *config.Config) (Bundle, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register makes a vendor available under name. Later registrations replace
// earlier ones.
func Register(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = constructor
}

// Open dials the vendor registered under name.
func Open(ctx context.Context, name string, cfg *config.Config) (Bundle, error) {
	registryMu.RLock()
	constructor, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("providers: unknown provider %q (have %v)", name, Registered())
	}
	return constructor(ctx, cfg)
}

// Registered lists the available vendor names, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("gemini", func(ctx context.Context, cfg *config.Config) (Bundle, error) {
		return NewGemini(ctx, cfg)
	})
}
