package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/uebersetzer/internal/cli"
	"horse.fit/uebersetzer/internal/config"
	"horse.fit/uebersetzer/internal/language"
)

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	catalogFile := fs.String("catalog", "", "Language catalog YAML (default LANGUAGE_CATALOG_FILE or built-in)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "languages does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	path := *catalogFile
	if path == "" {
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
		path = cfg.LanguageCatalogFile
	}

	catalog, err := language.LoadCatalog(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	entries := catalog.Entries()

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": entries}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{entry.Code, entry.Label, entry.TTSLocale})
	}
	if err := writeTable([]string{"CODE", "LABEL", "TTS_LOCALE"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
