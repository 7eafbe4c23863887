package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horse.fit/uebersetzer/internal/auth"
	"horse.fit/uebersetzer/internal/cli"
	"horse.fit/uebersetzer/internal/httpapi"
	"horse.fit/uebersetzer/internal/logging"
	"horse.fit/uebersetzer/internal/reader"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8090, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 6*time.Minute, "HTTP write timeout (covers model downloads)")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	rt, err := loadRuntime(envLoader, runtimeOptions{history: true, dbTimeout: 10 * time.Second})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer rt.Close()

	if !rt.cfg.HistoryEnabled() {
		rt.logger.Info().Msg("DATABASE_URL is not set; translation history disabled")
	}

	keys := auth.NewKeyVerifier(rt.cfg.APIKeyHash)
	if !keys.Enabled() {
		rt.logger.Warn().Msg("API_KEY_HASH is not set; API is open to any caller")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	deps := httpapi.Deps{
		Translator: rt.orchestrator,
		ForBackend: func(name string) (httpapi.Translator, error) {
			orchestrator, err := rt.forBackend(name)
			if err != nil {
				return nil, err
			}
			return orchestrator, nil
		},
		BackendNames: rt.backends.BackendNames(),
		Catalog:      rt.catalog,
		Keys:         keys,
		FetchPage:    reader.FetchPage,
	}
	if rt.recorder != nil {
		deps.History = rt.recorder
	}

	srv := httpapi.NewServer(deps, logging.Component(rt.logger, "httpapi"), httpapi.Options{
		Host:               *host,
		Port:               *port,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		ShutdownTimeout:    *shutdownTimeout,
		CORSAllowedOrigins: rt.cfg.CORSAllowedOriginsList(),
	})

	if err := srv.Start(ctx); err != nil {
		rt.logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
