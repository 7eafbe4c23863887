package translation

import (
	"context"
	"fmt"
)

// BrowserTranslator is one source/target pair handed out by the host's
// built-in translation capability.
type BrowserTranslator interface {
	// Ready blocks until the translator can serve requests.
	Ready(ctx context.Context) error
	Translate(ctx context.Context, text string) (string, error)
}

// BrowserTranslatorFactory creates translators for a language pair.
type BrowserTranslatorFactory interface {
	Create(ctx context.Context, sourceLang, targetLang string) (BrowserTranslator, error)
}

// BrowserBackend adapts the host's built-in translation capability.
type BrowserBackend struct {
	factory BrowserTranslatorFactory
}

// NewBrowserBackend wraps factory; a nil factory means the host lacks the capability.
func NewBrowserBackend(factory BrowserTranslatorFactory) *BrowserBackend {
	return &BrowserBackend{factory: factory}
}

func (b *BrowserBackend) Name() string {
	return BackendBrowser
}

// Available reports whether the host exposes the capability.
func (b *BrowserBackend) Available() bool {
	return b != nil && b.factory != nil
}

func (b *BrowserBackend) Translate(ctx context.Context, req Request) (string, error) {
	if !b.Available() {
		return "", ErrBackendUnavailable
	}

	translator, err := b.factory.Create(ctx, req.SourceLang, req.TargetLang)
	if err != nil {
		return "", fmt.Errorf("create browser translator: %w", err)
	}
	if translator == nil {
		return "", fmt.Errorf("create browser translator: %w", ErrBackendUnavailable)
	}
	if err := translator.Ready(ctx); err != nil {
		return "", fmt.Errorf("browser translator not ready: %w", err)
	}

	translated, err := translator.Translate(ctx, req.Text)
	if err != nil {
		return "", fmt.Errorf("browser translate: %w", err)
	}
	return translated, nil
}
