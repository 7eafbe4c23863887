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
	"horse.fit/uebersetzer/internal/translation"
)

type modelOutput struct {
	Language     string `json:"language"`
	Downloaded   bool   `json:"downloaded"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func runModels(args []string) int {
	if len(args) == 0 {
		printModelsUsage()
		return 2
	}

	action := strings.ToLower(strings.TrimSpace(args[0]))
	switch action {
	case "ensure", "status":
	case "help", "--help", "-h":
		printModelsUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown models action: %s\n\n", args[0])
		printModelsUsage()
		return 2
	}

	fs := flag.NewFlagSet("models "+action, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 10*time.Minute, "Command timeout")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "models %s requires at least one language code\n", action)
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	codes := make([]string, 0, fs.NArg())
	for _, raw := range fs.Args() {
		code := language.NormalizeCode(raw)
		if code == "" || language.IsAuto(code) {
			fmt.Fprintf(os.Stderr, "invalid language code: %q\n", raw)
			return 2
		}
		codes = append(codes, code)
	}

	var onStateChange func(translation.State)
	if action == "ensure" && outputFormat == outputFormatTable {
		onStateChange = printProgress()
	}

	rt, err := loadRuntime(envLoader, runtimeOptions{onStateChange: onStateChange})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer rt.Close()

	if rt.orchestrator.Mode() != translation.ModeNative {
		fmt.Fprintln(os.Stderr, "No on-device translation plugin is available; set NATIVE_BRIDGE_URL")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results, failed := collectModelStatus(ctx, rt.orchestrator, codes, action == "ensure")

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": results}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
	} else {
		rows := make([][]string, 0, len(results))
		for _, result := range results {
			rows = append(rows, []string{
				result.Language,
				rt.catalog.Label(result.Language),
				formatBool(result.Downloaded),
				result.ErrorMessage,
			})
		}
		if err := writeTable([]string{"CODE", "LABEL", "DOWNLOADED", "ERROR"}, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
			return 1
		}
	}

	if failed {
		return 1
	}
	return 0
}

// collectModelStatus optionally ensures each model, then reports its status.
// failed is true when an ensure errors, when any model is still missing after
// an ensure, or when a status query errors.
func collectModelStatus(ctx context.Context, models interface {
	EnsureModel(ctx context.Context, lang string) error
	ModelStatus(ctx context.Context, lang string) (bool, error)
}, codes []string, ensure bool) ([]modelOutput, bool) {
	results := make([]modelOutput, 0, len(codes))
	failed := false
	for _, code := range codes {
		var ensureErr error
		if ensure {
			ensureErr = models.EnsureModel(ctx, code)
		}
		result := modelOutput{Language: code}
		downloaded, err := models.ModelStatus(ctx, code)
		switch {
		case ensureErr != nil:
			result.ErrorMessage = ensureErr.Error()
			failed = true
		case err != nil:
			result.ErrorMessage = err.Error()
			failed = true
		case !downloaded && ensure:
			result.ErrorMessage = fmt.Sprintf("language model for %s is still being installed", code)
			failed = true
		}
		result.Downloaded = downloaded
		results = append(results, result)
	}
	return results, failed
}

func printModelsUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  translator models ensure [flags] <lang> [<lang>...]")
	fmt.Fprintln(os.Stderr, "  translator models status [flags] <lang> [<lang>...]")
}
