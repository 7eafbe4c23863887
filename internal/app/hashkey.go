package app

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/uebersetzer/internal/auth"
)

func runHashKey(args []string) int {
	fs := flag.NewFlagSet("hash-key", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	generate := fs.Bool("generate", false, "Generate a new random API key and print it with its hash")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var key string
	switch {
	case *generate:
		if fs.NArg() != 0 {
			fmt.Fprintln(os.Stderr, "--generate does not accept a key argument")
			return 2
		}
		generated, err := auth.GenerateAPIKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate API key: %v\n", err)
			return 1
		}
		key = generated
	case fs.NArg() == 1:
		key = fs.Arg(0)
	case fs.NArg() == 0:
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "hash-key requires a key argument, stdin or --generate")
			return 2
		}
		key = strings.TrimRight(line, "\r\n")
	default:
		fmt.Fprintln(os.Stderr, "hash-key accepts at most one key")
		return 2
	}

	hash, err := auth.HashAPIKey(key)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	if *generate {
		fmt.Fprintf(os.Stdout, "API key:      %s\n", key)
		fmt.Fprintf(os.Stdout, "API_KEY_HASH=%s\n", hash)
		return 0
	}
	fmt.Fprintln(os.Stdout, hash)
	return 0
}
