package provider

import (
	"fmt"
	"sync"
	"time"
)

// Config holds the construction parameters for one provider instance.
type Config struct {
	// Name is the instance name; defaults to Type when empty.
	Name string

	// Type selects the backend: "brave", "duckduckgo", "serpapi", "rss".
	Type string

	// APIKey is the credential for API-backed providers.
	APIKey string

	// Endpoint overrides the backend's default base URL (used in tests).
	Endpoint string

	// Timeout is the HTTP client timeout. Zero means 30s.
	Timeout time.Duration

	// RequestsPerSecond is the provider's rate limit. Consumed by the
	// orchestrator when it builds the per-provider limiter map.
	RequestsPerSecond float64

	// Feeds lists feed URLs for the RSS backend.
	Feeds []string
}

// Factory constructs a provider from its config.
type Factory func(Config) (Provider, error)

// Registry maps provider types to factories. The orchestrator builds
// one registry at construction time and owns it; there is no package
// level instance.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry returns a registry with all built-in backends registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.Register("brave", NewBrave)
	r.Register("duckduckgo", NewDuckDuckGo)
	r.Register("serpapi", NewSerpAPI)
	r.Register("rss", NewRSS)

	return r
}

// Register adds or replaces a factory for a provider type.
func (r *Registry) Register(providerType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[providerType] = factory
}

// Create builds a provider instance from config.
func (r *Registry) Create(cfg Config) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	return factory(cfg)
}

// Types returns all registered provider types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}
