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

// NativePluginBinding is the name the host registers the on-device plugin under.
const NativePluginBinding = "MlkitTranslate"

// NativePlugin is the on-device model plugin contract.
type NativePlugin interface {
	IsModelDownloaded(ctx context.Context, language string) (bool, error)
	DownloadModel(ctx context.Context, language string) (bool, error)
	Translate(ctx context.Context, req Request) (string, error)
}

// NativeBackend adapts a NativePlugin to Backend.
type NativeBackend struct {
	plugin NativePlugin
}

func NewNativeBackend(plugin NativePlugin) *NativeBackend {
	return &NativeBackend{plugin: plugin}
}

func (b *NativeBackend) Name() string {
	return BackendNative
}

func (b *NativeBackend) Translate(ctx context.Context, req Request) (string, error) {
	if b == nil || b.plugin == nil {
		return "", ErrNoNativePlugin
	}
	return b.plugin.Translate(ctx, req)
}

// BridgeClient speaks the native plugin contract as JSON over HTTP, for a
// mobile shell that exposes its plugins on a local port.
type BridgeClient struct {
	baseURL string
	client  *http.Client
}

// NewBridgeClient builds a client for POST {baseURL}/plugins/MlkitTranslate/<method>.
func NewBridgeClient(baseURL string, timeout time.Duration) *BridgeClient {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &BridgeClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type bridgeLanguageRequest struct {
	Language string `json:"language"`
}

type bridgeTranslateRequest struct {
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
	Text       string `json:"text"`
}

type bridgeDownloadedResponse struct {
	Downloaded bool `json:"downloaded"`
}

type bridgeSuccessResponse struct {
	Success bool `json:"success"`
}

type bridgeTranslateResponse struct {
	Text *string `json:"text"`
}

type bridgeErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *BridgeClient) IsModelDownloaded(ctx context.Context, language string) (bool, error) {
	var out bridgeDownloadedResponse
	if err := c.call(ctx, "isModelDownloaded", bridgeLanguageRequest{Language: language}, &out); err != nil {
		return false, err
	}
	return out.Downloaded, nil
}

func (c *BridgeClient) DownloadModel(ctx context.Context, language string) (bool, error) {
	var out bridgeSuccessResponse
	if err := c.call(ctx, "downloadModel", bridgeLanguageRequest{Language: language}, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

func (c *BridgeClient) Translate(ctx context.Context, req Request) (string, error) {
	var out bridgeTranslateResponse
	if err := c.call(ctx, "translate", bridgeTranslateRequest{
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Text:       req.Text,
	}, &out); err != nil {
		return "", err
	}
	if out.Text == nil {
		return "", fmt.Errorf("native bridge translate response missing text")
	}
	return *out.Text, nil
}

func (c *BridgeClient) call(ctx context.Context, method string, in, out any) error {
	if c == nil || c.baseURL == "" {
		return ErrNoNativePlugin
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	endpoint := c.baseURL + "/plugins/" + url.PathEscape(NativePluginBinding) + "/" + url.PathEscape(method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errPayload bridgeErrorResponse
		if unmarshalErr := json.Unmarshal(respBody, &errPayload); unmarshalErr == nil {
			msg := strings.TrimSpace(errPayload.Message)
			if msg == "" {
				msg = strings.TrimSpace(errPayload.Error)
			}
			if msg != "" {
				return fmt.Errorf("native bridge %s status %d: %s", method, resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("native bridge %s status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
