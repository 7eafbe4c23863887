package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/uebersetzer/internal/cli"
	"horse.fit/uebersetzer/internal/config"
	"horse.fit/uebersetzer/internal/db"
	"horse.fit/uebersetzer/internal/history"
	"horse.fit/uebersetzer/internal/langdetect"
	"horse.fit/uebersetzer/internal/language"
	"horse.fit/uebersetzer/internal/logging"
	"horse.fit/uebersetzer/internal/translation"
)

// runtime holds everything a command needs, built once from configuration.
type runtime struct {
	cfg          *config.Config
	logger       zerolog.Logger
	catalog      *language.Catalog
	detector     *langdetect.Detector
	backends     *translation.Registry
	plugins      *translation.PluginRegistry
	native       translation.NativePlugin
	recorder     *history.Recorder
	pool         *db.Pool
	orchestrator *translation.Orchestrator
}

type runtimeOptions struct {
	// history connects the database when DATABASE_URL is set.
	history bool
	// requireHistory fails when history cannot be connected.
	requireHistory bool
	dbTimeout      time.Duration
	onStateChange  func(translation.State)
}

func loadRuntime(envLoader *cli.EnvLoader, opts runtimeOptions) (*runtime, error) {
	if envLoader != nil {
		if err := envLoader.LoadOptional(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return nil, err
	}

	if opts.history || opts.requireHistory {
		if err := rt.connectHistory(opts.dbTimeout); err != nil {
			if opts.requireHistory {
				return nil, err
			}
			if !errors.Is(err, db.ErrNoDatabaseURL) {
				rt.logger.Warn().Err(err).Msg("translation history unavailable")
			}
		}
	}

	rt.orchestrator = rt.buildOrchestrator(rt.backends.FallbackChain(), opts.onStateChange)
	return rt, nil
}

func newRuntime(cfg *config.Config, logger zerolog.Logger) (*runtime, error) {
	catalog, err := language.LoadCatalog(cfg.LanguageCatalogFile)
	if err != nil {
		return nil, err
	}

	plugins := translation.NewPluginRegistry()
	if bridgeURL := strings.TrimSpace(cfg.NativeBridgeURL); bridgeURL != "" {
		if err := plugins.Register(translation.NativePluginBinding, translation.NewBridgeClient(bridgeURL, cfg.NativeBridgeTimeout)); err != nil {
			return nil, fmt.Errorf("register native bridge: %w", err)
		}
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		catalog:  catalog,
		detector: langdetect.New(catalog.Codes()),
		backends: translation.NewRegistryFromConfig(cfg),
		plugins:  plugins,
		native:   translation.ResolveNativePlugin(plugins),
	}, nil
}

func (rt *runtime) connectHistory(timeout time.Duration) error {
	if !rt.cfg.HistoryEnabled() {
		return db.ErrNoDatabaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, rt.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	rt.pool = pool
	rt.recorder = history.NewRecorder(pool, logging.Component(rt.logger, "history"))
	return nil
}

// buildOrchestrator wires an orchestrator over fallbacks. The host process
// has no built-in browser translator, so the browser stage is always absent.
func (rt *runtime) buildOrchestrator(fallbacks []translation.Backend, onStateChange func(translation.State)) *translation.Orchestrator {
	opts := translation.Options{
		Native:            rt.native,
		Fallbacks:         fallbacks,
		DetectLanguage:    rt.detector.DetectISO6391,
		DefaultSourceLang: rt.cfg.DefaultSourceLang,
		ClearErrorOnStart: rt.cfg.ClearErrorOnStart,
		OnStateChange:     onStateChange,
		Logger:            logging.Component(rt.logger, "translation"),
	}
	if rt.recorder != nil {
		opts.Recorder = rt.recorder
	}
	return translation.NewOrchestrator(opts)
}

// forBackend returns an orchestrator whose fallback chain is the one named
// web backend. The native plugin is bypassed.
func (rt *runtime) forBackend(name string) (*translation.Orchestrator, error) {
	backend, err := rt.backends.Backend(name)
	if err != nil {
		return nil, err
	}

	opts := translation.Options{
		Fallbacks:         []translation.Backend{backend},
		DetectLanguage:    rt.detector.DetectISO6391,
		DefaultSourceLang: rt.cfg.DefaultSourceLang,
		Logger:            logging.Component(rt.logger, "translation"),
	}
	if rt.recorder != nil {
		opts.Recorder = rt.recorder
	}
	return translation.NewOrchestrator(opts), nil
}

func (rt *runtime) Close() {
	if rt == nil || rt.pool == nil {
		return
	}
	if err := rt.pool.Close(); err != nil {
		rt.logger.Warn().Err(err).Msg("close database pool failed")
	}
}
