package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/NoCritics/succinct-tesseract/internal/config"
	"github.com/NoCritics/succinct-tesseract/internal/explorer"
	"github.com/NoCritics/succinct-tesseract/internal/fetch"
	"github.com/NoCritics/succinct-tesseract/internal/observability"
	"github.com/NoCritics/succinct-tesseract/internal/proofcache"
	"github.com/prometheus/client_golang/prometheus"
)

// newRenderer is swapped out in tests so commands run without a browser.
var newRenderer = fetch.NewRenderer

// loadConfig reads the config file named by --config and applies the verbose flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	logger, err := observability.NewLogger(out, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// buildService assembles renderer, fetcher, cache and fallback into an explorer service.
func buildService(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*explorer.Service, error) {
	renderer, err := newRenderer(cfg.Engine, cfg.FetchOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	svc, err := explorer.NewService(explorer.Config{
		Fetcher: fetch.NewPageFetcher(renderer, cfg.ExplorerURL, logger),
		Cache:   proofcache.New(cfg.CacheWindow),
		Policy:  explorer.FailurePolicy(cfg.OnFailure),
		Metrics: explorer.NewMetrics(reg),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create explorer service: %w", err)
	}
	return svc, nil
}
