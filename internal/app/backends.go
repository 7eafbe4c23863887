package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"horse.fit/uebersetzer/internal/cli"
)

type backendsOutput struct {
	Mode       string   `json:"mode"`
	Chain      []string `json:"chain"`
	Registered []string `json:"registered"`
	Plugins    []string `json:"plugins"`
	Simulate   bool     `json:"simulate"`
	History    bool     `json:"history"`
}

func runBackends(args []string) int {
	fs := flag.NewFlagSet("backends", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	rt, err := loadRuntime(envLoader, runtimeOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer rt.Close()

	out := backendsOutput{
		Mode:       rt.orchestrator.Mode(),
		Chain:      rt.orchestrator.ChainNames(),
		Registered: rt.backends.BackendNames(),
		Plugins:    rt.plugins.Names(),
		Simulate:   rt.cfg.Simulate,
		History:    rt.cfg.HistoryEnabled(),
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(out); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(os.Stdout, "mode: %s\n", out.Mode)
	if len(out.Plugins) > 0 {
		fmt.Fprintf(os.Stdout, "plugins: %s\n", strings.Join(out.Plugins, ", "))
	}
	fmt.Fprintln(os.Stdout)
	rows := make([][]string, 0, len(out.Registered))
	for _, name := range out.Registered {
		position := ""
		if idx := slices.Index(out.Chain, name); idx >= 0 {
			position = strconv.Itoa(idx + 1)
		}
		rows = append(rows, []string{name, position})
	}
	if err := writeTable([]string{"BACKEND", "CHAIN_POSITION"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
