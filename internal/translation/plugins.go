package translation

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// PluginRegistry holds the plugins a host environment exposes, keyed by
// binding name. A missing binding is a normal condition.
type PluginRegistry struct {
	mu      sync.RWMutex
	plugins map[string]any
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{plugins: make(map[string]any)}
}

// Register exposes plugin under name, replacing any earlier registration.
func (r *PluginRegistry) Register(name string, plugin any) error {
	if r == nil {
		return fmt.Errorf("plugin registry is nil")
	}
	if plugin == nil {
		return fmt.Errorf("plugin %q is nil", name)
	}
	binding := strings.TrimSpace(name)
	if binding == "" {
		return fmt.Errorf("plugin binding name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[binding] = plugin
	return nil
}

func (r *PluginRegistry) Lookup(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	plugin, ok := r.plugins[strings.TrimSpace(name)]
	return plugin, ok
}

func (r *PluginRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveNativePlugin looks up the registry for the MlkitTranslate binding.
// It returns nil when the binding is absent or does not satisfy NativePlugin.
func ResolveNativePlugin(registry *PluginRegistry) NativePlugin {
	plugin, ok := registry.Lookup(NativePluginBinding)
	if !ok {
		return nil
	}
	native, ok := plugin.(NativePlugin)
	if !ok {
		return nil
	}
	return native
}
