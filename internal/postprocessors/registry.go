package postprocessors

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// Params is the per-processor table from the pipeline configuration.
// Numbers decoded from TOML arrive as int64 and from JSON as float64.
type Params map[string]any

// Int returns key as an int, or def when it is absent or not numeric.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Has reports whether key is set.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// BuilderFunc creates a PostProcessor from its configuration table.
type BuilderFunc func(params Params) (driven.PostProcessor, error)

// Registry maps stage names to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder. A later registration under the same name wins.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// Build creates the stage called name.
func (r *Registry) Build(name string, params Params) (driven.PostProcessor, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown processor %q (have %v)", name, r.Names())
	}

	proc, err := builder(params)
	if err != nil {
		return nil, fmt.Errorf("configure processor %s: %w", name, err)
	}
	return proc, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered stage names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.builders))
}
