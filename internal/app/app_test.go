package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/uebersetzer/internal/config"
	"horse.fit/uebersetzer/internal/langdetect"
	"horse.fit/uebersetzer/internal/language"
	"horse.fit/uebersetzer/internal/translation"
)

func TestRun_Dispatch(t *testing.T) {
	t.Parallel()

	if code := Run(nil); code != 2 {
		t.Fatalf("expected exit code 2 without a command, got %d", code)
	}
	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("expected exit code 0 for help, got %d", code)
	}
	if code := Run([]string{"story"}); code != 2 {
		t.Fatalf("expected exit code 2 for unknown command, got %d", code)
	}
	if code := Run([]string{"models", "purge", "de"}); code != 2 {
		t.Fatalf("expected exit code 2 for unknown models action, got %d", code)
	}
	if code := Run([]string{"history"}); code != 2 {
		t.Fatalf("expected exit code 2 without a history action, got %d", code)
	}
}

func TestRun_FlagValidation(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"translate", "--format", "xml", "Hallo"},
		{"translate", "--max-chars", "0", "Hallo"},
		{"translate", "--url", "https://example.com", "Hallo"},
		{"languages", "--format", "csv"},
		{"languages", "extra"},
		{"history", "prune"},
		{"history", "stats", "--day", "yesterday"},
		{"serve", "--port", "0"},
		{"hash-key", "a", "b"},
	}
	for _, args := range cases {
		if code := Run(args); code != 2 {
			t.Fatalf("Run(%q) = %d, want 2", args, code)
		}
	}
}

func TestRuntime_FallbackMode(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime(t, func(cfg *config.Config) {
		cfg.Simulate = true
	})
	orchestrator := rt.buildOrchestrator(rt.backends.FallbackChain(), nil)

	if orchestrator.Mode() != translation.ModeFallback {
		t.Fatalf("expected fallback mode, got %q", orchestrator.Mode())
	}
	if got := orchestrator.ChainNames(); !slices.Equal(got, []string{translation.BackendSimulated}) {
		t.Fatalf("unexpected chain: %v", got)
	}
	if got := rt.plugins.Names(); len(got) != 0 {
		t.Fatalf("expected no plugins without a bridge, got %v", got)
	}

	outcome := orchestrator.Translate(context.Background(), translation.Request{SourceLang: "de", TargetLang: "en", Text: "Hallo"})
	if outcome.Text != "[EN-Pseudo] Hallo" || outcome.Backend != translation.BackendSimulated {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestRuntime_ForBackend(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime(t, nil)

	orchestrator, err := rt.forBackend(" Simulated ")
	if err != nil {
		t.Fatalf("forBackend returned error: %v", err)
	}
	if got := orchestrator.ChainNames(); !slices.Equal(got, []string{translation.BackendSimulated}) {
		t.Fatalf("unexpected chain: %v", got)
	}
	if got := orchestrator.TranslateText(context.Background(), "de", "fr", "Hallo"); got != "[FR-Pseudo] Hallo" {
		t.Fatalf("unexpected translation: %q", got)
	}

	if _, err := rt.forBackend("deepl"); err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected unregistered backend error, got %v", err)
	}
}

func TestRuntime_NativeBridge(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/plugins/MlkitTranslate/isModelDownloaded":
			_, _ = w.Write([]byte(`{"downloaded":true}`))
		case "/plugins/MlkitTranslate/translate":
			_, _ = w.Write([]byte(`{"text":"Hello"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	rt := newTestRuntime(t, func(cfg *config.Config) {
		cfg.NativeBridgeURL = server.URL
	})
	orchestrator := rt.buildOrchestrator(rt.backends.FallbackChain(), nil)

	if orchestrator.Mode() != translation.ModeNative {
		t.Fatalf("expected native mode, got %q", orchestrator.Mode())
	}
	if got := rt.plugins.Names(); !slices.Equal(got, []string{translation.NativePluginBinding}) {
		t.Fatalf("unexpected plugins: %v", got)
	}
	if got := orchestrator.TranslateText(context.Background(), "de", "en", "Hallo"); got != "Hello" {
		t.Fatalf("unexpected translation: %q", got)
	}

	results, failed := collectModelStatus(context.Background(), orchestrator, []string{"de", "en"}, true)
	if failed {
		t.Fatalf("expected every model downloaded, got %+v", results)
	}
	if len(results) != 2 || !results[0].Downloaded || results[1].Language != "en" {
		t.Fatalf("unexpected model results: %+v", results)
	}
}

func TestCollectModelStatus_Failures(t *testing.T) {
	t.Parallel()

	models := &stubModels{
		downloaded: map[string]bool{"de": true, "it": true},
		statusErr:  map[string]error{"ja": errors.New("bridge offline")},
		ensureErr:  map[string]error{"fr": errors.New("download language model fr: plugin reported failure")},
	}

	results, failed := collectModelStatus(context.Background(), models, []string{"de", "fr", "ja", "it", "pt"}, true)
	if !failed {
		t.Fatalf("expected failure")
	}
	if !slices.Equal(models.ensured, []string{"de", "fr", "ja", "it", "pt"}) {
		t.Fatalf("unexpected ensure calls: %v", models.ensured)
	}
	if results[0].ErrorMessage != "" || !results[0].Downloaded {
		t.Fatalf("unexpected de result: %+v", results[0])
	}
	if results[1].ErrorMessage != "download language model fr: plugin reported failure" {
		t.Fatalf("unexpected fr result: %+v", results[1])
	}
	if results[2].ErrorMessage != "bridge offline" {
		t.Fatalf("unexpected ja result: %+v", results[2])
	}
	// A model ensured after a failure must not inherit the earlier message.
	if results[3].ErrorMessage != "" || !results[3].Downloaded {
		t.Fatalf("unexpected it result: %+v", results[3])
	}
	if !strings.Contains(results[4].ErrorMessage, "pt") || results[4].Downloaded {
		t.Fatalf("unexpected pt result: %+v", results[4])
	}

	statusOnly := &stubModels{}
	results, failed = collectModelStatus(context.Background(), statusOnly, []string{"fr"}, false)
	if failed || results[0].Downloaded || len(statusOnly.ensured) != 0 {
		t.Fatalf("status must not ensure or fail on a missing model: %+v failed=%v", results, failed)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	catalog := language.DefaultCatalog()
	detector := langdetect.New([]string{"de", "en", "fr"})

	out := detectLanguage(detector, catalog, "Heute scheint die Sonne und wir gehen zusammen in den Park spazieren.", "en")
	if out.Code != "de" || out.Fallback {
		t.Fatalf("unexpected detection: %+v", out)
	}
	if out.Label == "" {
		t.Fatalf("expected catalog label for de")
	}

	out = detectLanguage(detector, catalog, "ok", "de-AT")
	if out.Code != "de" || !out.Fallback {
		t.Fatalf("expected fallback to de, got %+v", out)
	}
}

func newTestRuntime(t *testing.T, mutate func(*config.Config)) *runtime {
	t.Helper()

	cfg := &config.Config{
		Environment:            "test",
		LogLevel:               "error",
		DBMinConns:             1,
		DBMaxConns:             4,
		NativeBridgeTimeout:    time.Second,
		LibreTranslateURL:      "http://127.0.0.1:1",
		MyMemoryURL:            "http://127.0.0.1:1",
		TranslationHTTPTimeout: time.Second,
		DefaultSourceLang:      "de",
		DefaultTargetLang:      "en",
	}
	if mutate != nil {
		mutate(cfg)
	}

	rt, err := newRuntime(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newRuntime returned error: %v", err)
	}
	return rt
}

type stubModels struct {
	downloaded map[string]bool
	statusErr  map[string]error
	ensureErr  map[string]error
	ensured    []string
}

func (s *stubModels) EnsureModel(_ context.Context, lang string) error {
	s.ensured = append(s.ensured, lang)
	return s.ensureErr[lang]
}

func (s *stubModels) ModelStatus(_ context.Context, lang string) (bool, error) {
	if err := s.statusErr[lang]; err != nil {
		return false, err
	}
	return s.downloaded[lang], nil
}
