// Command pmdashd is the pmdash server daemon. It loads the YAML config,
// builds the analysis pipeline, and serves the dashboard API until
// interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoCodeAlone/pmdash/analysis"
	"github.com/GoCodeAlone/pmdash/config"
	"github.com/GoCodeAlone/pmdash/internal/version"
	"github.com/GoCodeAlone/pmdash/provider"
	"github.com/GoCodeAlone/pmdash/provider/mock"
	"github.com/GoCodeAlone/pmdash/server"
)

var configPath = flag.String("config", "", "path to pmdash config file (default: built-in defaults + env)")

func main() {
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("load config", "err", err)
			os.Exit(1)
		}
	} else {
		cfg = config.FromEnv()
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger.Info("starting pmdashd",
		"version", version.Version,
		"commit", version.Commit,
		"provider", cfg.Provider.Name,
	)

	var backend provider.Provider
	if cfg.Provider.Name == "mock" {
		backend = mock.New()
	} else {
		backend, err = provider.New(cfg.Provider.Name, cfg.Provider.APIKey, cfg.Provider.BaseURL)
		if err != nil {
			logger.Error("build provider", "err", err)
			os.Exit(1)
		}
	}

	pipe := analysis.New(backend, cfg, logger)
	srv := server.New(*cfg, pipe, version.Version, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server error", "err", err)
		os.Exit(1)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	logger.Info("shutdown complete")
}
