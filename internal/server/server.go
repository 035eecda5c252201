// Package server provides the HTTP API of the proof fetch service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/explorer"
	"github.com/NoCritics/succinct-tesseract/internal/server/middleware"
	"github.com/NoCritics/succinct-tesseract/internal/types"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// ProofService is the cache-or-fetch logic behind the API.
type ProofService interface {
	GetOrRefresh(ctx context.Context, prover string) (explorer.Result, error)
	Health() types.HealthResponse
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	service    ProofService
	logger     *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	Service        ProofService
	// Registry receives the HTTP metrics and is served on /metrics. Nil disables both.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("server: service is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		service: cfg.Service,
		logger:  cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(s.logger))
	r.Use(chimw.Recoverer)
	if cfg.Registry != nil {
		r.Use(middleware.NewHTTPMetrics(cfg.Registry).Instrument)
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", s.handleHealth)
	r.Get("/explorer/latest-proof/{prover}", s.handleLatestProof)
	// The visualization's proxy URL keeps the /api prefix.
	r.Get("/api/explorer/latest-proof/{prover}", s.handleLatestProof)
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// A cold request can wait on navigation, both table waits and the render grace.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// handleHealth reports liveness and cache state
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.service.Health())
}

// handleLatestProof returns the latest proof for the prover in the path
func (s *Server) handleLatestProof(w http.ResponseWriter, r *http.Request) {
	prover := chi.URLParam(r, "prover")

	res, err := s.service.GetOrRefresh(r.Context(), prover)
	if err != nil {
		s.jsonResponse(w, http.StatusBadGateway, types.ErrorResponse{
			Error: "failed to fetch latest proof",
			Kind:  explorer.FailureKind(err),
		})
		return
	}

	w.Header().Set("X-Proof-Source", string(res.Source))
	s.jsonResponse(w, http.StatusOK, types.LatestProofResponse{Proof: &res.Proof})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", "error", err)
	}
}
