// Package fetch renders the explorer's prover page in a headless browser and
// hands the resulting DOM to the row extractor.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/parsing"
)

// DefaultUserAgent is a desktop Chrome user agent; the explorer is less likely
// to serve a challenge page to it than to the headless default.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Row selectors. The fallback matches the second row of any table, i.e. the
// first row after a header.
const (
	DefaultTableSelector         = "tbody tr"
	DefaultFallbackTableSelector = "table tr:nth-child(2)"
)

// Options configures a browser render.
type Options struct {
	NavigationTimeout     time.Duration
	TableTimeout          time.Duration
	FallbackTableTimeout  time.Duration
	RenderGrace           time.Duration // fixed delay after the table appears so rows can populate
	UserAgent             string
	ViewportWidth         int
	ViewportHeight        int
	TableSelector         string
	FallbackTableSelector string
}

// DefaultOptions returns the timeouts and browser settings used against the live explorer.
func DefaultOptions() *Options {
	return &Options{
		NavigationTimeout:     30 * time.Second,
		TableTimeout:          15 * time.Second,
		FallbackTableTimeout:  10 * time.Second,
		RenderGrace:           5 * time.Second,
		UserAgent:             DefaultUserAgent,
		ViewportWidth:         1920,
		ViewportHeight:        1080,
		TableSelector:         DefaultTableSelector,
		FallbackTableSelector: DefaultFallbackTableSelector,
	}
}

// Renderer loads a page in a fresh, isolated browser session and returns its
// rendered HTML once the proof table is present. Implementations must release
// the browser before returning, on every path.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// Supported renderer engines.
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// NewRenderer returns the renderer for engine.
func NewRenderer(engine string, opts *Options, logger *slog.Logger) (Renderer, error) {
	switch engine {
	case EngineChromedp, "":
		return NewChromedpRenderer(opts, logger), nil
	case EngineRod:
		return NewRodRenderer(opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q", engine)
	}
}

// ProverURL builds the explorer page URL for a prover address.
func ProverURL(baseURL, prover string) string {
	return strings.TrimSuffix(baseURL, "/") + "/prover/" + url.PathEscape(prover)
}

// PageFetcher fetches the latest proof row for a prover.
type PageFetcher struct {
	renderer Renderer
	baseURL  string
	logger   *slog.Logger
}

// NewPageFetcher creates a fetcher that renders pages under baseURL with renderer.
func NewPageFetcher(renderer Renderer, baseURL string, logger *slog.Logger) *PageFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageFetcher{
		renderer: renderer,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// FetchLatestRow renders the prover's page and extracts its latest table row.
// Errors are *Error for browser failures and *parsing.ExtractionError when the
// page rendered but held no rows.
func (f *PageFetcher) FetchLatestRow(ctx context.Context, prover string) (*parsing.Extraction, error) {
	pageURL := ProverURL(f.baseURL, prover)
	start := time.Now()

	html, err := f.renderer.Render(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("page rendered", "url", pageURL, "bytes", len(html), "elapsed", time.Since(start))

	ext, err := parsing.ExtractLatestRow(html)
	if err != nil {
		return nil, err
	}
	if ext.Degraded {
		f.logger.Warn("incomplete row, fell back to positional text split",
			"url", pageURL, "cells", ext.Cells, "expected", parsing.ExpectedCells)
	}
	return ext, nil
}
