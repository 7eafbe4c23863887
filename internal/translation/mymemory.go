package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultMyMemoryURL is the public MyMemory API.
const DefaultMyMemoryURL = "https://api.mymemory.translated.net"

// MyMemoryBackend calls the MyMemory GET /get endpoint.
type MyMemoryBackend struct {
	endpointURL string
	email       string
	client      *http.Client
}

// NewMyMemoryBackend builds a backend for baseURL. A contact email raises
// MyMemory's anonymous daily quota.
func NewMyMemoryBackend(baseURL, email string, timeout time.Duration) *MyMemoryBackend {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MyMemoryBackend{
		endpointURL: myMemoryURL(baseURL),
		email:       strings.TrimSpace(email),
		client:      &http.Client{Timeout: timeout},
	}
}

func (b *MyMemoryBackend) Name() string {
	return BackendMyMemory
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  myMemoryStatus `json:"responseStatus"`
	ResponseDetails string         `json:"responseDetails"`
}

// myMemoryStatus accepts responseStatus as a number or a quoted number;
// the API uses both.
type myMemoryStatus int

func (s *myMemoryStatus) UnmarshalJSON(raw []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if trimmed == "" || trimmed == "null" {
		*s = 0
		return nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return fmt.Errorf("responseStatus %q is not a number", trimmed)
	}
	*s = myMemoryStatus(value)
	return nil
}

// Translate succeeds only on a 2xx response whose responseStatus is 200.
func (b *MyMemoryBackend) Translate(ctx context.Context, req Request) (string, error) {
	if b == nil {
		return "", fmt.Errorf("mymemory backend is nil")
	}

	query := url.Values{}
	query.Set("q", req.Text)
	query.Set("langpair", req.SourceLang+"|"+req.TargetLang)
	if b.email != "" {
		query.Set("de", b.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpointURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build mymemory request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send mymemory request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read mymemory response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("mymemory status %d", resp.StatusCode)
	}

	var parsed myMemoryResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode mymemory response: %w", err)
	}
	if parsed.ResponseStatus != http.StatusOK {
		details := strings.TrimSpace(parsed.ResponseDetails)
		if details == "" {
			details = "no details"
		}
		return "", fmt.Errorf("mymemory responseStatus %d: %s", int(parsed.ResponseStatus), details)
	}
	return parsed.ResponseData.TranslatedText, nil
}

func myMemoryURL(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		endpoint = DefaultMyMemoryURL
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultMyMemoryURL + "/get"
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/get") {
		path += "/get"
	}
	parsed.Path = path
	parsed.RawQuery = ""
	return parsed.String()
}
