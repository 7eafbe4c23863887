package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/uebersetzer/internal/cli"
	"horse.fit/uebersetzer/internal/language"
	"horse.fit/uebersetzer/internal/reader"
	"horse.fit/uebersetzer/internal/translation"
)

type translateOutput struct {
	Text         string `json:"text"`
	Backend      string `json:"backend,omitempty"`
	Mode         string `json:"mode"`
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
	LatencyMS    int64  `json:"latency_ms"`
	Succeeded    bool   `json:"succeeded"`
	ErrorMessage string `json:"error_message,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	Truncated    bool   `json:"truncated,omitempty"`
}

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	from := fs.String("from", "", "Source language code, or auto (default DEFAULT_SOURCE_LANG)")
	to := fs.String("to", "", "Target language code (default DEFAULT_TARGET_LANG)")
	backend := fs.String("backend", "", "Use only this web backend (libretranslate, mymemory, simulated)")
	pageURL := fs.String("url", "", "Translate the readable text of this web page")
	maxChars := fs.Int("max-chars", reader.DefaultMaxChars, "Maximum characters taken from --url")
	format := fs.String("format", outputFormatText, "Output format: text or json")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	progress := fs.Bool("progress", false, "Print progress messages to stderr")
	noHistory := fs.Bool("no-history", false, "Do not record this call in translation history")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatText)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}
	if *maxChars <= 0 {
		fmt.Fprintln(os.Stderr, "--max-chars must be > 0")
		return 2
	}
	if *timeout <= 0 {
		fmt.Fprintln(os.Stderr, "--timeout must be > 0")
		return 2
	}
	trimmedURL := strings.TrimSpace(*pageURL)
	if trimmedURL != "" && fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "translate takes either --url or text, not both")
		return 2
	}

	var onStateChange func(translation.State)
	if *progress {
		onStateChange = printProgress()
	}

	rt, err := loadRuntime(envLoader, runtimeOptions{history: !*noHistory, onStateChange: onStateChange})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer rt.Close()

	sourceLang := firstNonEmpty(*from, rt.cfg.DefaultSourceLang)
	targetLang := language.NormalizeCode(firstNonEmpty(*to, rt.cfg.DefaultTargetLang))
	if targetLang == "" || language.IsAuto(targetLang) {
		fmt.Fprintln(os.Stderr, "--to must be a language code")
		return 2
	}
	if !rt.catalog.Supports(targetLang) {
		rt.logger.Warn().Str("target_lang", targetLang).Msg("target language is not in the catalog")
	}

	orchestrator := rt.orchestrator
	if name := strings.TrimSpace(*backend); name != "" {
		orchestrator, err = rt.forBackend(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 2
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	out := translateOutput{}
	var text string
	if trimmedURL != "" {
		fetchOpts := reader.FetchOptions{MaxChars: *maxChars}
		if !language.IsAuto(sourceLang) {
			fetchOpts.AcceptLanguage = language.NormalizeCode(sourceLang)
		}
		page, err := reader.FetchPage(ctx, trimmedURL, fetchOpts)
		if err != nil {
			rt.logger.Error().Err(err).Str("url", trimmedURL).Msg("fetch page failed")
			fmt.Fprintf(os.Stderr, "Failed to fetch page: %v\n", err)
			return 1
		}
		text = page.Text
		out.SourceURL = page.URL
		out.Truncated = page.Truncated
	} else {
		text, err = readInputText(fs.Args(), stdinIfPiped())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
	}

	outcome := orchestrator.Translate(ctx, translation.Request{
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Text:       text,
	})

	out.Text = outcome.Text
	out.Backend = outcome.Backend
	out.Mode = orchestrator.Mode()
	out.SourceLang = outcome.SourceLang
	out.TargetLang = outcome.TargetLang
	out.LatencyMS = outcome.LatencyMS
	out.Succeeded = outcome.Succeeded() || strings.TrimSpace(text) == ""
	if outcome.Err != nil {
		out.ErrorMessage = outcome.ErrorMessage
	}

	switch outputFormat {
	case outputFormatJSON:
		if err := printJSON(out); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
	default:
		if out.Text != "" {
			fmt.Fprintln(os.Stdout, out.Text)
		}
	}

	if !out.Succeeded {
		if out.ErrorMessage != "" {
			fmt.Fprintln(os.Stderr, out.ErrorMessage)
		}
		return 1
	}
	return 0
}

func printProgress() func(translation.State) {
	var last string
	return func(state translation.State) {
		message := strings.TrimSpace(state.ProgressMessage)
		if message == "" || message == last {
			last = message
			return
		}
		last = message
		fmt.Fprintln(os.Stderr, message)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
