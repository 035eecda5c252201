// Package explorer serves the latest proof for a prover, scraping the explorer
// when the cached record is stale and substituting a synthetic record when
// scraping fails.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/fetch"
	"github.com/NoCritics/succinct-tesseract/internal/parsing"
	"github.com/NoCritics/succinct-tesseract/internal/proofcache"
	"github.com/NoCritics/succinct-tesseract/internal/types"
)

// RowFetcher renders a prover's page and extracts its latest row.
type RowFetcher interface {
	FetchLatestRow(ctx context.Context, prover string) (*parsing.Extraction, error)
}

// FailurePolicy decides what callers get when scraping fails.
type FailurePolicy string

const (
	// PolicyFallback answers with a synthetic record.
	PolicyFallback FailurePolicy = "fallback"
	// PolicyError returns the scrape error to the caller.
	PolicyError FailurePolicy = "error"
)

// Source tells where a served record came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceFetch    Source = "fetch"
	SourceFallback Source = "fallback"
)

// Result is a served record plus its provenance.
type Result struct {
	Proof  types.ProofRecord
	Source Source
	// FetchErr is the scrape failure behind a fallback record.
	FetchErr error
}

// Config holds the service's collaborators. Only Fetcher is required.
type Config struct {
	Fetcher  RowFetcher
	Cache    *proofcache.Cache
	Fallback *FallbackGenerator
	Policy   FailurePolicy
	Metrics  *Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service implements cache-or-fetch for the latest proof.
type Service struct {
	fetcher  RowFetcher
	cache    *proofcache.Cache
	fallback *FallbackGenerator
	policy   FailurePolicy
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a service, filling unset collaborators with defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("explorer: fetcher is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Cache == nil {
		cfg.Cache = proofcache.New(proofcache.DefaultWindow, proofcache.WithClock(cfg.Now))
	}
	if cfg.Fallback == nil {
		cfg.Fallback = NewFallbackGenerator(cfg.Now)
	}
	switch cfg.Policy {
	case "":
		cfg.Policy = PolicyFallback
	case PolicyFallback, PolicyError:
	default:
		return nil, fmt.Errorf("explorer: unknown failure policy %q", cfg.Policy)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		fetcher:  cfg.Fetcher,
		cache:    cfg.Cache,
		fallback: cfg.Fallback,
		policy:   cfg.Policy,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}, nil
}

// GetOrRefresh returns the cached record while it is fresh, and otherwise
// scrapes the explorer for prover and caches the result. A failed scrape
// leaves the cache untouched; under PolicyFallback it yields a synthetic
// record and a nil error, under PolicyError it returns the scrape error.
//
// The cache holds a single record regardless of prover. Concurrent stale
// callers each scrape, and the last one to finish wins the slot.
func (s *Service) GetOrRefresh(ctx context.Context, prover string) (Result, error) {
	if rec, ok := s.cache.Fresh(); ok {
		s.metrics.cacheHits.Inc()
		s.logger.Debug("serving cached proof", "id", rec.ID)
		return Result{Proof: rec, Source: SourceCache}, nil
	}

	// A client going away does not abort a scrape; the renderer's own
	// timeouts bound it.
	rec, err := s.Fetch(context.WithoutCancel(ctx), prover)
	if err != nil {
		s.metrics.attempts.WithLabelValues("failure").Inc()
		kind := FailureKind(err)

		if s.policy == PolicyError {
			s.logger.Error("proof fetch failed", "prover", prover, "kind", kind, "error", err)
			return Result{}, err
		}

		s.metrics.fallbacks.WithLabelValues(kind).Inc()
		s.logger.Warn("proof fetch failed, serving fallback record",
			"prover", prover, "kind", kind, "error", err)
		return Result{
			Proof:    s.fallback.Generate(prover),
			Source:   SourceFallback,
			FetchErr: err,
		}, nil
	}

	s.metrics.attempts.WithLabelValues("success").Inc()
	s.cache.Store(rec)
	return Result{Proof: rec, Source: SourceFetch}, nil
}

// Fetch runs one scrape-extract-normalize cycle without consulting or updating the cache.
func (s *Service) Fetch(ctx context.Context, prover string) (types.ProofRecord, error) {
	start := time.Now()
	s.logger.Info("scraping latest proof", "prover", prover)

	ext, err := s.fetcher.FetchLatestRow(ctx, prover)
	s.metrics.fetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return types.ProofRecord{}, err
	}

	rec, issues := parsing.Normalize(ext.Row, prover, s.now())
	for _, issue := range issues {
		s.logger.Debug("field normalized to default", "prover", prover, "issue", issue)
	}

	s.logger.Info("proof fetched",
		"prover", prover, "id", rec.ID, "status", rec.Status, "cycles", rec.Cycles,
		"strategy", ext.Strategy, "degraded", ext.Degraded, "elapsed", time.Since(start))
	return rec, nil
}

// Health reports the cache state for the health probe.
func (s *Service) Health() types.HealthResponse {
	resp := types.HealthResponse{
		Status:    "ok",
		Cache:     types.CacheCold,
		LastFetch: types.LastFetchNever,
	}
	if warm, fetchedAt := s.cache.Snapshot(); warm {
		resp.Cache = types.CacheWarm
		resp.LastFetch = fetchedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	}
	return resp
}

// FailureKind names the failure class of a scrape error for logs, metrics and error responses.
func FailureKind(err error) string {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return string(fetchErr.Kind)
	}
	var extErr *parsing.ExtractionError
	if errors.As(err, &extErr) {
		return string(extErr.Kind)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return string(fetch.KindNavigationTimeout)
	}
	return "unknown"
}
