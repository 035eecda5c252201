package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NoCritics/succinct-tesseract/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	servePort      int
	serveEngine    string
	serveOnFailure string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes the latest proof per prover, a health probe and Prometheus metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().StringVar(&serveEngine, "engine", "", "Browser engine: chromedp or rod")
	serveCmd.Flags().StringVar(&serveOnFailure, "on-failure", "", "Scrape failure policy: fallback or error")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveEngine != "" {
		cfg.Engine = serveEngine
	}
	if serveOnFailure != "" {
		cfg.OnFailure = serveOnFailure
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := buildService(cfg, logger, reg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		Service:        svc,
		Registry:       reg,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("proof fetch service configured",
		"port", cfg.Port,
		"explorer", cfg.ExplorerURL,
		"engine", cfg.Engine,
		"on_failure", cfg.OnFailure,
		"cache_window", cfg.CacheWindow)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
