// Package config provides configuration loading and validation for the proof fetch service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/fetch"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults for the public explorer and the visualization front-end.
const (
	DefaultPort        = 3002
	DefaultExplorerURL = "https://explorer.succinct.xyz"
	DefaultProver      = "0x111de2f78767e45ebd1bd360b110728e5c79df47"
	DefaultCacheWindow = 30 * time.Second
)

// DefaultAllowedOrigins are the front-end origins allowed by CORS.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:4173", // vite preview
	"https://succylongtimegames.space",
	"https://www.succylongtimegames.space",
}

// Config is the service configuration. Every field has a compiled-in default;
// a YAML file may override any of them and PORT overrides the port.
type Config struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ExplorerURL    string        `yaml:"explorer_url" validate:"required,url"`
	DefaultProver  string        `yaml:"default_prover" validate:"required"`
	Engine         string        `yaml:"engine" validate:"oneof=chromedp rod"`
	OnFailure      string        `yaml:"on_failure" validate:"oneof=fallback error"`
	CacheWindow    time.Duration `yaml:"cache_window" validate:"gt=0"`
	AllowedOrigins []string      `yaml:"allowed_origins" validate:"dive,url"`
	LogLevel       string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string        `yaml:"log_format" validate:"oneof=json text"`
	Browser        BrowserConfig `yaml:"browser"`
}

// BrowserConfig holds the headless browser settings.
type BrowserConfig struct {
	NavigationTimeout    time.Duration `yaml:"navigation_timeout" validate:"gt=0"`
	TableTimeout         time.Duration `yaml:"table_timeout" validate:"gt=0"`
	FallbackTableTimeout time.Duration `yaml:"fallback_table_timeout" validate:"gt=0"`
	RenderGrace          time.Duration `yaml:"render_grace" validate:"gte=0"`
	UserAgent            string        `yaml:"user_agent" validate:"required"`
	ViewportWidth        int           `yaml:"viewport_width" validate:"gt=0"`
	ViewportHeight       int           `yaml:"viewport_height" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := fetch.DefaultOptions()
	return &Config{
		Port:           DefaultPort,
		ExplorerURL:    DefaultExplorerURL,
		DefaultProver:  DefaultProver,
		Engine:         fetch.EngineChromedp,
		OnFailure:      "fallback",
		CacheWindow:    DefaultCacheWindow,
		AllowedOrigins: append([]string(nil), DefaultAllowedOrigins...),
		LogLevel:       "info",
		LogFormat:      "json",
		Browser: BrowserConfig{
			NavigationTimeout:    opts.NavigationTimeout,
			TableTimeout:         opts.TableTimeout,
			FallbackTableTimeout: opts.FallbackTableTimeout,
			RenderGrace:          opts.RenderGrace,
			UserAgent:            opts.UserAgent,
			ViewportWidth:        opts.ViewportWidth,
			ViewportHeight:       opts.ViewportHeight,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile decodes a YAML file over the current values. Keys absent from
// the file keep their current value.
func (c *Config) mergeFile(path string) error {
	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// applyEnv applies PORT, accepting "8080" or ":8080".
func (c *Config) applyEnv() error {
	p := strings.TrimPrefix(os.Getenv("PORT"), ":")
	if p == "" {
		return nil
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return fmt.Errorf("config error: invalid PORT %q: %w", p, err)
	}
	c.Port = port
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// FetchOptions converts the browser settings into renderer options.
func (c *Config) FetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.NavigationTimeout = c.Browser.NavigationTimeout
	opts.TableTimeout = c.Browser.TableTimeout
	opts.FallbackTableTimeout = c.Browser.FallbackTableTimeout
	opts.RenderGrace = c.Browser.RenderGrace
	opts.UserAgent = c.Browser.UserAgent
	opts.ViewportWidth = c.Browser.ViewportWidth
	opts.ViewportHeight = c.Browser.ViewportHeight
	return opts
}
