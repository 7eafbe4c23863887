package translation

import (
	"context"
	"errors"
)

// Backend names.
const (
	BackendNative         = "native"
	BackendBrowser        = "browser"
	BackendLibreTranslate = "libretranslate"
	BackendMyMemory       = "mymemory"
	BackendSimulated      = "simulated"
)

var (
	// ErrBackendUnavailable marks a backend the host does not provide.
	ErrBackendUnavailable = errors.New("translation backend unavailable")
	// ErrNoNativePlugin is returned by model operations without a native plugin.
	ErrNoNativePlugin = errors.New("native translation plugin is not available")
	// ErrModelDownloadRejected is wrapped when downloadModel answers success=false.
	ErrModelDownloadRejected = errors.New("plugin reported failure")
)

// Backend translates text through one provider.
type Backend interface {
	Translate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Request describes one translation request. Text is passed verbatim.
type Request struct {
	SourceLang string `json:"source_lang"` // ISO 639-1, or "auto"
	TargetLang string `json:"target_lang"`
	Text       string `json:"text"`
}
