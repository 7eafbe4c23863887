package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultLibreTranslateURL is the public LibreTranslate instance.
const DefaultLibreTranslateURL = "https://libretranslate.com"

// LibreTranslateBackend calls a LibreTranslate server's /translate endpoint.
type LibreTranslateBackend struct {
	endpointURL string
	apiKey      string
	client      *http.Client
}

// NewLibreTranslateBackend builds a backend for baseURL; apiKey may be empty.
func NewLibreTranslateBackend(baseURL, apiKey string, timeout time.Duration) *LibreTranslateBackend {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LibreTranslateBackend{
		endpointURL: libreTranslateURL(baseURL),
		apiKey:      strings.TrimSpace(apiKey),
		client:      &http.Client{Timeout: timeout},
	}
}

func (b *LibreTranslateBackend) Name() string {
	return BackendLibreTranslate
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText *string `json:"translatedText"`
}

type libreTranslateErrorResponse struct {
	Error string `json:"error"`
}

// Translate succeeds only on a 2xx response that carries translatedText.
func (b *LibreTranslateBackend) Translate(ctx context.Context, req Request) (string, error) {
	if b == nil {
		return "", fmt.Errorf("libretranslate backend is nil")
	}

	body, err := json.Marshal(libreTranslateRequest{
		Q:      req.Text,
		Source: req.SourceLang,
		Target: req.TargetLang,
		Format: "text",
		APIKey: b.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshal libretranslate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpointURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build libretranslate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send libretranslate request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read libretranslate response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errPayload libreTranslateErrorResponse
		if unmarshalErr := json.Unmarshal(respBody, &errPayload); unmarshalErr == nil {
			if msg := strings.TrimSpace(errPayload.Error); msg != "" {
				return "", fmt.Errorf("libretranslate status %d: %s", resp.StatusCode, msg)
			}
		}
		return "", fmt.Errorf("libretranslate status %d", resp.StatusCode)
	}

	var parsed libreTranslateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode libretranslate response: %w", err)
	}
	if parsed.TranslatedText == nil {
		return "", fmt.Errorf("libretranslate response missing translatedText")
	}
	return *parsed.TranslatedText, nil
}

func libreTranslateURL(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		endpoint = DefaultLibreTranslateURL
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLibreTranslateURL + "/translate"
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/translate") {
		path += "/translate"
	}
	parsed.Path = path
	return parsed.String()
}
