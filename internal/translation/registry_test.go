package translation

import (
	"strings"
	"testing"
	"time"

	"horse.fit/uebersetzer/internal/config"
)

func TestRegistryFallbackChainOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistryFromConfig(&config.Config{
		LibreTranslateURL:      "http://libre.local",
		MyMemoryURL:            "http://mymemory.local",
		TranslationHTTPTimeout: time.Second,
	})

	chain := registry.FallbackChain()
	if len(chain) != 2 || chain[0].Name() != BackendLibreTranslate || chain[1].Name() != BackendMyMemory {
		t.Fatalf("unexpected chain: %v", backendNames(chain))
	}

	names := registry.BackendNames()
	if strings.Join(names, ",") != "libretranslate,mymemory,simulated" {
		t.Fatalf("unexpected backend names: %v", names)
	}
}

func TestRegistrySimulateReplacesWebChain(t *testing.T) {
	t.Parallel()

	registry := NewRegistryFromConfig(&config.Config{Simulate: true})
	chain := registry.FallbackChain()
	if len(chain) != 1 || chain[0].Name() != BackendSimulated {
		t.Fatalf("unexpected chain: %v", backendNames(chain))
	}
}

func TestRegistryBackendLookup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if _, err := registry.Backend("mymemory"); err == nil {
		t.Fatalf("expected error for empty registry")
	}
	if err := registry.Register(&stubBackend{name: " MyMemory "}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := registry.Register(&stubBackend{name: " "}); err == nil {
		t.Fatalf("expected error for blank backend name")
	}
	if _, err := registry.Backend("MYMEMORY"); err != nil {
		t.Fatalf("Backend returned error: %v", err)
	}
	_, err := registry.Backend("deepl")
	if err == nil || !strings.Contains(err.Error(), "available: mymemory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveNativePlugin(t *testing.T) {
	t.Parallel()

	registry := NewPluginRegistry()
	if ResolveNativePlugin(registry) != nil {
		t.Fatalf("expected nil plugin for empty registry")
	}
	if ResolveNativePlugin(nil) != nil {
		t.Fatalf("expected nil plugin for nil registry")
	}

	if err := registry.Register(NativePluginBinding, "not a plugin"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if ResolveNativePlugin(registry) != nil {
		t.Fatalf("expected nil plugin for wrong type")
	}

	native := &stubNativePlugin{}
	if err := registry.Register(NativePluginBinding, native); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if ResolveNativePlugin(registry) != native {
		t.Fatalf("expected registered plugin to resolve")
	}
	if names := registry.Names(); len(names) != 1 || names[0] != NativePluginBinding {
		t.Fatalf("unexpected names: %v", names)
	}
	if err := registry.Register("Other", nil); err == nil {
		t.Fatalf("expected error for nil plugin")
	}
}

func backendNames(chain []Backend) []string {
	names := make([]string, 0, len(chain))
	for _, backend := range chain {
		names = append(names, backend.Name())
	}
	return names
}
