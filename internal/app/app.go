package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "translate":
		return runTranslate(args[1:])
	case "detect":
		return runDetect(args[1:])
	case "languages":
		return runLanguages(args[1:])
	case "models":
		return runModels(args[1:])
	case "backends":
		return runBackends(args[1:])
	case "history":
		return runHistory(args[1:])
	case "hash-key":
		return runHashKey(args[1:])
	case "health":
		return runHealth(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "translator CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  translator <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  translate  Translate text, stdin or a web page")
	fmt.Fprintln(os.Stderr, "  detect     Detect the language of a text")
	fmt.Fprintln(os.Stderr, "  languages  List the language catalog")
	fmt.Fprintln(os.Stderr, "  models     Ensure or inspect on-device language models")
	fmt.Fprintln(os.Stderr, "  backends   Show the active mode and fallback chain")
	fmt.Fprintln(os.Stderr, "  history    List, summarize or prune translation history")
	fmt.Fprintln(os.Stderr, "  hash-key   Hash an API key for API_KEY_HASH")
	fmt.Fprintln(os.Stderr, "  health     Check database and native bridge connectivity")
	fmt.Fprintln(os.Stderr, "  serve      Start Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"translator <command> -h\" for command-specific flags.")
}
