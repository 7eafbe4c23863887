package translation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/uebersetzer/internal/globaltime"
	"horse.fit/uebersetzer/internal/language"
)

// Modes reported by Orchestrator.Mode.
const (
	ModeNative   = "native"
	ModeFallback = "fallback"
)

// Options wires an Orchestrator. Everything is resolved once at construction.
type Options struct {
	// Native is the on-device plugin, nil when the host has none.
	Native NativePlugin
	// Browser is the host's built-in translation capability, nil when absent.
	Browser BrowserTranslatorFactory
	// Fallbacks are tried after the browser capability, in order.
	Fallbacks []Backend

	// DetectLanguage resolves an "auto" source; it returns "" when unsure.
	DetectLanguage func(text string) string
	// DefaultSourceLang is used when detection fails.
	DefaultSourceLang string
	// ClearErrorOnStart resets ErrorMessage when a new call begins.
	ClearErrorOnStart bool

	OnStateChange func(State)
	Recorder      Recorder
	Logger        zerolog.Logger
}

// Outcome is the full result of one call.
type Outcome struct {
	Text       string `json:"text"`
	Backend    string `json:"backend,omitempty"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	LatencyMS  int64  `json:"latency_ms"`
	// ErrorMessage is the notice this call wrote to the error state.
	ErrorMessage string `json:"error_message,omitempty"`
	Err          error  `json:"-"`
}

// Succeeded reports whether a backend produced the text.
func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.Backend != ""
}

// Orchestrator selects a backend, ensures on-device models, applies the
// fallback policy and publishes progress and error state.
type Orchestrator struct {
	native    *NativeBackend
	models    *ModelManager
	chain     []Candidate
	state     *stateStore
	recorder  Recorder
	detect    func(string) string
	defSource string
	clearErr  bool
	logger    zerolog.Logger
}

func NewOrchestrator(opts Options) *Orchestrator {
	state := newStateStore(opts.OnStateChange)

	o := &Orchestrator{
		state:     state,
		recorder:  opts.Recorder,
		detect:    opts.DetectLanguage,
		defSource: language.NormalizeCode(opts.DefaultSourceLang),
		clearErr:  opts.ClearErrorOnStart,
		logger:    opts.Logger,
	}

	if opts.Native != nil {
		o.native = NewNativeBackend(opts.Native)
		o.models = newModelManager(opts.Native, state, opts.Logger)
		return o
	}

	browser := NewBrowserBackend(opts.Browser)
	if browser.Available() {
		o.chain = append(o.chain, CandidateFor(browser))
	}
	for _, backend := range opts.Fallbacks {
		if backend == nil {
			continue
		}
		o.chain = append(o.chain, CandidateFor(backend))
	}
	return o
}

// Mode reports which path TranslateText takes.
func (o *Orchestrator) Mode() string {
	if o.native != nil {
		return ModeNative
	}
	return ModeFallback
}

// ChainNames lists the fallback chain in priority order.
func (o *Orchestrator) ChainNames() []string {
	if o.native != nil {
		return []string{BackendNative}
	}
	names := make([]string, 0, len(o.chain))
	for _, candidate := range o.chain {
		names = append(names, candidate.Name)
	}
	return names
}

func (o *Orchestrator) State() State {
	return o.state.snapshot()
}

func (o *Orchestrator) Downloading() bool { return o.state.snapshot().Downloading }

func (o *Orchestrator) Translating() bool { return o.state.snapshot().Translating }

func (o *Orchestrator) ProgressMessage() string { return o.state.snapshot().ProgressMessage }

func (o *Orchestrator) ErrorMessage() string { return o.state.snapshot().ErrorMessage }

// EnsureModel runs model assurance for lang and returns this call's failure,
// which is also written to ErrorMessage. Without a native plugin it does
// nothing.
func (o *Orchestrator) EnsureModel(ctx context.Context, lang string) error {
	return o.models.EnsureModel(ctx, normalizeLang(lang))
}

// ModelStatus reports whether lang's on-device model is present.
func (o *Orchestrator) ModelStatus(ctx context.Context, lang string) (bool, error) {
	return o.models.ModelStatus(ctx, normalizeLang(lang))
}

// TranslateText translates text and never returns an error: failures land in
// ErrorMessage. On total failure the native path returns "" while the
// fallback chain returns text unchanged.
func (o *Orchestrator) TranslateText(ctx context.Context, sourceLang, targetLang, text string) string {
	return o.Translate(ctx, Request{SourceLang: sourceLang, TargetLang: targetLang, Text: text}).Text
}

// Translate runs the same procedure as TranslateText and also reports which
// backend answered and why a call failed.
func (o *Orchestrator) Translate(ctx context.Context, req Request) Outcome {
	if strings.TrimSpace(req.Text) == "" {
		return Outcome{SourceLang: req.SourceLang, TargetLang: req.TargetLang}
	}

	if o.clearErr {
		o.state.clearError()
	}

	req.SourceLang = o.resolveSourceLang(req)
	req.TargetLang = normalizeLang(req.TargetLang)

	started := globaltime.Now()
	var outcome Outcome
	if o.native != nil {
		outcome = o.translateNative(ctx, req)
	} else {
		outcome = o.translateFallback(ctx, req)
	}
	outcome.SourceLang = req.SourceLang
	outcome.TargetLang = req.TargetLang
	outcome.LatencyMS = globaltime.SinceMillis(started)

	o.record(ctx, req, outcome)
	return outcome
}

func (o *Orchestrator) translateNative(ctx context.Context, req Request) Outcome {
	_ = o.models.EnsureModel(ctx, req.SourceLang)
	_ = o.models.EnsureModel(ctx, req.TargetLang)

	o.state.beginTranslate()
	defer o.state.endTranslate()

	translated, err := o.native.Translate(ctx, req)
	if err != nil {
		o.logger.Warn().Err(err).
			Str("source_lang", req.SourceLang).
			Str("target_lang", req.TargetLang).
			Msg("native translation failed")
		o.state.setError(err.Error())
		return Outcome{Err: err, ErrorMessage: err.Error()}
	}
	return Outcome{Text: translated, Backend: BackendNative}
}

func (o *Orchestrator) translateFallback(ctx context.Context, req Request) Outcome {
	o.state.beginTranslate()
	defer o.state.endTranslate()

	translated, backend, err := FirstSuccess(ctx, o.chain, req, func(attempt Attempt) {
		o.logger.Debug().Err(attempt.Err).
			Str("backend", attempt.Backend).
			Msg("translation backend failed, trying next")
	})
	if err != nil {
		o.logger.Warn().Err(err).
			Str("source_lang", req.SourceLang).
			Str("target_lang", req.TargetLang).
			Msg("translation fallback chain exhausted")
		o.state.setError(ExhaustedMessage)
		return Outcome{Text: req.Text, Err: err, ErrorMessage: ExhaustedMessage}
	}
	return Outcome{Text: translated, Backend: backend}
}

func (o *Orchestrator) resolveSourceLang(req Request) string {
	if !language.IsAuto(req.SourceLang) {
		return normalizeLang(req.SourceLang)
	}
	if o.detect != nil {
		if detected := language.NormalizeCode(o.detect(req.Text)); detected != "" {
			return detected
		}
	}
	if o.defSource != "" {
		return o.defSource
	}
	return language.AutoCode
}

func (o *Orchestrator) record(ctx context.Context, req Request, outcome Outcome) {
	if o.recorder == nil {
		return
	}

	entry := Record{
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
		OriginalText:   req.Text,
		TranslatedText: outcome.Text,
		Backend:        outcome.Backend,
		Mode:           o.Mode(),
		LatencyMS:      outcome.LatencyMS,
		ErrorMessage:   outcome.ErrorMessage,
	}

	if err := o.recorder.Record(ctx, entry); err != nil {
		o.logger.Warn().Err(err).Msg("record translation history failed")
	}
}

// normalizeLang reduces a tag to its primary subtag, keeping values the
// normalizer rejects as given.
func normalizeLang(raw string) string {
	if code := language.NormalizeCode(raw); code != "" {
		return code
	}
	return strings.TrimSpace(raw)
}
