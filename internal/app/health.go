package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/uebersetzer/internal/cli"
	"horse.fit/uebersetzer/internal/translation"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Database ping and bridge check timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rt, err := loadRuntime(envLoader, runtimeOptions{history: true, dbTimeout: *timeout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if rt.cfg.HistoryEnabled() {
		if err := rt.pool.Ping(ctx); err != nil {
			rt.logger.Error().Err(err).Msg("database health check failed")
			fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
			return 1
		}
		fmt.Println("ok: database ping successful")
	} else {
		fmt.Println("skip: DATABASE_URL is not set, history disabled")
	}

	if rt.orchestrator.Mode() == translation.ModeNative {
		if _, err := rt.orchestrator.ModelStatus(ctx, rt.cfg.DefaultTargetLang); err != nil {
			rt.logger.Error().Err(err).Msg("native bridge health check failed")
			fmt.Fprintf(os.Stderr, "Health check failed: native bridge: %v\n", err)
			return 1
		}
		fmt.Println("ok: native bridge reachable")
	} else {
		fmt.Printf("ok: fallback chain %v\n", rt.orchestrator.ChainNames())
	}

	rt.logger.Info().
		Dur("timeout", *timeout).
		Str("mode", rt.orchestrator.Mode()).
		Msg("health check passed")
	return 0
}
