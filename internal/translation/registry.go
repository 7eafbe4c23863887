package translation

import (
	"fmt"
	"sort"
	"strings"

	"horse.fit/uebersetzer/internal/config"
)

// webChainOrder is the fixed priority of the HTTP fallback services.
var webChainOrder = []string{BackendLibreTranslate, BackendMyMemory}

// Registry stores the web backends by name.
type Registry struct {
	backends map[string]Backend
	simulate bool
}

func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// NewRegistryFromConfig registers LibreTranslate, MyMemory and the simulated
// backend from configuration. With TRANSLATION_SIMULATE set the fallback
// chain is the simulated backend alone.
func NewRegistryFromConfig(cfg *config.Config) *Registry {
	registry := NewRegistry()
	if cfg == nil {
		return registry
	}
	_ = registry.Register(NewLibreTranslateBackend(cfg.LibreTranslateURL, cfg.LibreTranslateAPIKey, cfg.TranslationHTTPTimeout))
	_ = registry.Register(NewMyMemoryBackend(cfg.MyMemoryURL, cfg.MyMemoryEmail, cfg.TranslationHTTPTimeout))
	_ = registry.Register(NewSimulatedBackend(cfg.SimulateDelay))
	registry.simulate = cfg.Simulate
	return registry
}

// Register adds one backend, replacing an earlier one with the same name.
func (r *Registry) Register(backend Backend) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if backend == nil {
		return fmt.Errorf("backend is nil")
	}
	name := normalizeBackendName(backend.Name())
	if name == "" {
		return fmt.Errorf("backend name is required")
	}
	r.backends[name] = backend
	return nil
}

// Backend resolves a backend by name.
func (r *Registry) Backend(name string) (Backend, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if len(r.backends) == 0 {
		return nil, fmt.Errorf("no translation backends are registered")
	}

	resolved := normalizeBackendName(name)
	backend, ok := r.backends[resolved]
	if ok {
		return backend, nil
	}
	return nil, fmt.Errorf("translation backend %q is not registered (available: %s)", resolved, strings.Join(r.BackendNames(), ", "))
}

func (r *Registry) BackendNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FallbackChain returns the registered web backends in priority order.
func (r *Registry) FallbackChain() []Backend {
	if r == nil {
		return nil
	}
	if r.simulate {
		if backend, ok := r.backends[BackendSimulated]; ok {
			return []Backend{backend}
		}
	}
	chain := make([]Backend, 0, len(webChainOrder))
	for _, name := range webChainOrder {
		if backend, ok := r.backends[name]; ok {
			chain = append(chain, backend)
		}
	}
	return chain
}

func normalizeBackendName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
