package translation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ModelManager makes sure on-device language models are present before the
// native plugin is asked to translate.
type ModelManager struct {
	plugin NativePlugin
	state  *stateStore
	logger zerolog.Logger
}

func newModelManager(plugin NativePlugin, state *stateStore, logger zerolog.Logger) *ModelManager {
	return &ModelManager{plugin: plugin, state: state, logger: logger}
}

// DownloadMessage is the progress text shown while a model downloads.
func DownloadMessage(lang string) string {
	return fmt.Sprintf("downloading language model for %s", lang)
}

// EnsureModel downloads the model for lang when it is missing. It is a no-op
// without a native plugin. A failure is written to the error state and also
// returned; callers on the translation path ignore it. Downloading and
// ProgressMessage are only touched when a download starts, and are always
// reset once it ends.
func (m *ModelManager) EnsureModel(ctx context.Context, lang string) error {
	if m == nil || m.plugin == nil {
		return nil
	}

	downloaded, err := m.plugin.IsModelDownloaded(ctx, lang)
	if err != nil {
		return m.fail(lang, fmt.Errorf("check language model %s: %w", lang, err))
	}
	if downloaded {
		return nil
	}

	m.state.beginDownload(DownloadMessage(lang))
	defer m.state.endDownload()
	m.logger.Info().Str("lang", lang).Msg("downloading language model")

	ok, err := m.plugin.DownloadModel(ctx, lang)
	if err != nil {
		return m.fail(lang, fmt.Errorf("download language model %s: %w", lang, err))
	}
	if !ok {
		return m.fail(lang, fmt.Errorf("download language model %s: %w", lang, ErrModelDownloadRejected))
	}
	m.logger.Info().Str("lang", lang).Msg("language model ready")
	return nil
}

// ModelStatus reports whether lang's model is resident.
func (m *ModelManager) ModelStatus(ctx context.Context, lang string) (bool, error) {
	if m == nil || m.plugin == nil {
		return false, ErrNoNativePlugin
	}
	downloaded, err := m.plugin.IsModelDownloaded(ctx, lang)
	if err != nil {
		return false, fmt.Errorf("check language model %s: %w", lang, err)
	}
	return downloaded, nil
}

func (m *ModelManager) fail(lang string, err error) error {
	m.logger.Warn().Err(err).Str("lang", lang).Msg("language model assurance failed")
	m.state.setError(err.Error())
	return err
}
