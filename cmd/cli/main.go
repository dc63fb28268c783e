package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/policylogs/internal/buildinfo"
	"github.com/dmitrijs2005/policylogs/internal/client/cli"
	"github.com/dmitrijs2005/policylogs/internal/client/client"
	"github.com/dmitrijs2005/policylogs/internal/client/config"
	"github.com/dmitrijs2005/policylogs/internal/client/securestore"
	"github.com/dmitrijs2005/policylogs/internal/client/services"
	"github.com/dmitrijs2005/policylogs/internal/client/transport"
	"github.com/dmitrijs2005/policylogs/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore.Close(); err != nil {
			logger.Warn(ctx, "store close failed", "err", err)
		}
	}()

	tr, err := transport.NewHTTPTransport(cfg.ServerBaseURL, cfg.RequestTimeout, logger)
	if err != nil {
		return err
	}
	api := client.NewRESTClient(tr)

	session := services.NewSessionManager(ctx, api, store, logger)

	var seed services.SeedProvider
	if cfg.SeedFallback {
		seed = services.FixtureSeed{}
	}
	logs := services.NewLogSyncEngine(api, session, seed, logger)

	cli.NewApp(cfg, session, logs, tr.HTTPClient(), logger).Run(ctx)
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore opens the encrypted SQLite store, or an in-memory one when no
// path is configured.
func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (securestore.Store, io.Closer, error) {
	if cfg.StorePath == "" {
		logger.Warn(ctx, "no store path configured, the session will not survive a restart")
		return securestore.NewMemoryStore(), nopCloser{}, nil
	}
	if cfg.StoreSecret == "" {
		logger.Warn(ctx, "store secret is empty, stored credentials are only obfuscated")
	}

	s, err := securestore.Open(ctx, cfg.StorePath, []byte(cfg.StoreSecret))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return s, s, nil
}
