package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLibreTranslateBackend_Translate(t *testing.T) {
	t.Parallel()

	var got libreTranslateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"Hello"}`))
	}))
	defer server.Close()

	backend := NewLibreTranslateBackend(server.URL, "secret", time.Second)
	translated, err := backend.Translate(context.Background(), Request{SourceLang: "de", TargetLang: "en", Text: "Hallo"})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if translated != "Hello" {
		t.Fatalf("unexpected translation: %q", translated)
	}
	if got.Q != "Hallo" || got.Source != "de" || got.Target != "en" || got.Format != "text" || got.APIKey != "secret" {
		t.Fatalf("unexpected request payload: %+v", got)
	}
}

func TestLibreTranslateBackend_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"overloaded"}`, wantErr: "overloaded"},
		{name: "missing field", status: http.StatusOK, body: `{}`, wantErr: "missing translatedText"},
		{name: "invalid json", status: http.StatusOK, body: `not json`, wantErr: "decode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(&countingHandler{status: tc.status, body: tc.body})
			defer server.Close()

			backend := NewLibreTranslateBackend(server.URL, "", time.Second)
			_, err := backend.Translate(context.Background(), Request{SourceLang: "de", TargetLang: "en", Text: "Hallo"})
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLibreTranslateURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                    DefaultLibreTranslateURL + "/translate",
		"libre.internal:5000":                 "https://libre.internal:5000/translate",
		"http://localhost:5000/":              "http://localhost:5000/translate",
		"http://localhost:5000/translate":     "http://localhost:5000/translate",
		"https://example.com/libre/translate": "https://example.com/libre/translate",
	}
	for raw, want := range cases {
		if got := libreTranslateURL(raw); got != want {
			t.Fatalf("libreTranslateURL(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestMyMemoryBackend_Translate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/get" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("q") != "Hallo Welt" || query.Get("langpair") != "de|en" || query.Get("de") != "ops@example.com" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"responseStatus":200,"responseData":{"translatedText":"Hello world"}}`))
	}))
	defer server.Close()

	backend := NewMyMemoryBackend(server.URL, "ops@example.com", time.Second)
	translated, err := backend.Translate(context.Background(), Request{SourceLang: "de", TargetLang: "en", Text: "Hallo Welt"})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if translated != "Hello world" {
		t.Fatalf("unexpected translation: %q", translated)
	}
}

func TestMyMemoryBackend_StatusHandling(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr string
	}{
		{name: "string status ok", status: http.StatusOK, body: `{"responseStatus":"200","responseData":{"translatedText":"Hello"}}`, want: "Hello"},
		{name: "quota", status: http.StatusOK, body: `{"responseStatus":429,"responseDetails":"LIMIT REACHED","responseData":{"translatedText":"Hallo"}}`, wantErr: "LIMIT REACHED"},
		{name: "http error", status: http.StatusBadGateway, body: `{}`, wantErr: "status 502"},
		{name: "bad status value", status: http.StatusOK, body: `{"responseStatus":"ok"}`, wantErr: "decode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(&countingHandler{status: tc.status, body: tc.body})
			defer server.Close()

			backend := NewMyMemoryBackend(server.URL, "", time.Second)
			translated, err := backend.Translate(context.Background(), Request{SourceLang: "de", TargetLang: "en", Text: "Hallo"})
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Translate returned error: %v", err)
			}
			if translated != tc.want {
				t.Fatalf("unexpected translation: %q", translated)
			}
		})
	}
}

func TestBridgeClient_Methods(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/plugins/MlkitTranslate/isModelDownloaded":
			var in bridgeLanguageRequest
			_ = json.NewDecoder(r.Body).Decode(&in)
			_, _ = w.Write([]byte(`{"downloaded":` + boolJSON(in.Language == "de") + `}`))
		case "/plugins/MlkitTranslate/downloadModel":
			_, _ = w.Write([]byte(`{"success":true}`))
		case "/plugins/MlkitTranslate/translate":
			var in bridgeTranslateRequest
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.SourceLang != "de" || in.TargetLang != "en" || in.Text != "Hallo" {
				t.Errorf("unexpected translate payload: %+v", in)
			}
			_, _ = w.Write([]byte(`{"text":"Hello"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewBridgeClient(server.URL+"/", time.Second)
	ctx := context.Background()

	downloaded, err := client.IsModelDownloaded(ctx, "de")
	if err != nil || !downloaded {
		t.Fatalf("expected de downloaded, got %v err=%v", downloaded, err)
	}
	downloaded, err = client.IsModelDownloaded(ctx, "en")
	if err != nil || downloaded {
		t.Fatalf("expected en missing, got %v err=%v", downloaded, err)
	}
	ok, err := client.DownloadModel(ctx, "en")
	if err != nil || !ok {
		t.Fatalf("expected download success, got %v err=%v", ok, err)
	}
	translated, err := client.Translate(ctx, Request{SourceLang: "de", TargetLang: "en", Text: "Hallo"})
	if err != nil || translated != "Hello" {
		t.Fatalf("unexpected translate result %q err=%v", translated, err)
	}
}

func TestBridgeClient_Errors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plugins/MlkitTranslate/translate":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"message":"model store offline"}`))
		}
	}))
	defer server.Close()

	client := NewBridgeClient(server.URL, time.Second)
	if _, err := client.DownloadModel(context.Background(), "fr"); err == nil || !strings.Contains(err.Error(), "model store offline") {
		t.Fatalf("expected bridge error message, got %v", err)
	}
	if _, err := client.Translate(context.Background(), Request{Text: "Hallo"}); err == nil || !strings.Contains(err.Error(), "missing text") {
		t.Fatalf("expected missing text error, got %v", err)
	}

	var unset *BridgeClient
	if _, err := unset.IsModelDownloaded(context.Background(), "de"); !errors.Is(err, ErrNoNativePlugin) {
		t.Fatalf("expected ErrNoNativePlugin, got %v", err)
	}
}

func TestBrowserBackend(t *testing.T) {
	t.Parallel()

	if NewBrowserBackend(nil).Available() {
		t.Fatalf("nil factory must be unavailable")
	}
	if _, err := NewBrowserBackend(nil).Translate(context.Background(), Request{Text: "Hallo"}); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}

	backend := NewBrowserBackend(&stubBrowserFactory{createErr: errors.New("unsupported pair")})
	if _, err := backend.Translate(context.Background(), Request{Text: "Hallo"}); err == nil || !strings.Contains(err.Error(), "unsupported pair") {
		t.Fatalf("expected create error, got %v", err)
	}

	backend = NewBrowserBackend(&stubBrowserFactory{translated: "Hello"})
	translated, err := backend.Translate(context.Background(), Request{SourceLang: "de", TargetLang: "en", Text: "Hallo"})
	if err != nil || translated != "Hello" {
		t.Fatalf("unexpected result %q err=%v", translated, err)
	}
}

func TestSimulatedBackend(t *testing.T) {
	t.Parallel()

	backend := NewSimulatedBackend(0)
	translated, err := backend.Translate(context.Background(), Request{SourceLang: "de", TargetLang: "en", Text: "Hallo"})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if translated != "[EN-Pseudo] Hallo" {
		t.Fatalf("unexpected translation: %q", translated)
	}

	slow := NewSimulatedBackend(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := slow.Translate(ctx, Request{TargetLang: "en", Text: "Hallo"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func boolJSON(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
