package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/uebersetzer/internal/cli"
	"horse.fit/uebersetzer/internal/config"
	"horse.fit/uebersetzer/internal/langdetect"
	"horse.fit/uebersetzer/internal/language"
)

type detectOutput struct {
	Code     string `json:"code"`
	Label    string `json:"label,omitempty"`
	Fallback bool   `json:"fallback"`
}

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", outputFormatText, "Output format: text or json")

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

	text, err := readInputText(fs.Args(), stdinIfPiped())
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "detect requires text as arguments or on stdin")
		return 2
	}

	if envLoader != nil {
		if err := envLoader.LoadOptional(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	catalog, err := language.LoadCatalog(cfg.LanguageCatalogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	out := detectLanguage(langdetect.New(catalog.Codes()), catalog, text, cfg.DefaultSourceLang)

	if outputFormat == outputFormatJSON {
		if err := printJSON(out); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprintln(os.Stdout, out.Code)
	return 0
}

// detectLanguage falls back to defaultCode when the detector is unsure.
func detectLanguage(detector *langdetect.Detector, catalog *language.Catalog, text, defaultCode string) detectOutput {
	out := detectOutput{Code: detector.DetectISO6391(text)}
	if out.Code == "" {
		out.Code = language.NormalizeCode(defaultCode)
		out.Fallback = true
	}
	if entry, ok := catalog.Lookup(out.Code); ok {
		out.Label = entry.Label
	}
	return out
}
