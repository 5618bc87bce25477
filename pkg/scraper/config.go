package scraper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	fetch "github.com/PentesterFlow/apidocs/internal/http"
	"github.com/PentesterFlow/apidocs/internal/logger"
	"github.com/PentesterFlow/apidocs/internal/output"
	"github.com/PentesterFlow/apidocs/internal/parser"
)

// Config holds all scraper configuration.
type Config struct {
	// Base URL of the documentation site; listing and reference paths are
	// appended to it.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Path of the listing page whose navigation leaves link to reference pages
	ListingPath string `json:"listing_path" yaml:"listing_path"`

	// Request timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// User agent sent with every request; empty keeps the transport default
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Extra headers to include in all requests
	CustomHeaders map[string]string `json:"custom_headers" yaml:"custom_headers"`

	// Pages larger than this fail the run; zero means 10 MB
	MaxBodySize int64 `json:"max_body_size" yaml:"max_body_size"`

	// Request pacing; zero disables it
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// Class markers used to locate page regions
	Selectors parser.Selectors `json:"selectors" yaml:"selectors"`

	// Output configuration
	Output output.Config `json:"output" yaml:"output"`

	// Log level name (debug, info, warn, error, disabled); overrides
	// Verbose and Debug when set
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// RateLimitConfig holds request pacing settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// DefaultConfig returns the configuration for the Twitter REST docs.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://dev.twitter.com",
		ListingPath: "/rest/public",
		Timeout:     30 * time.Second,
		MaxBodySize: fetch.DefaultMaxBodySize,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Selectors: parser.DefaultSelectors(),
		Output: output.Config{
			Format: "json",
			Pretty: false,
		},
	}
}

// LoadFromFile loads configuration from a file (JSON or YAML) on top of
// the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file. A .json suffix selects JSON,
// anything else YAML.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must be http or https, got %q", c.BaseURL)
	}

	if c.ListingPath == "" {
		return fmt.Errorf("listing path is required")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if c.MaxBodySize < 0 {
		return fmt.Errorf("max body size must not be negative")
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}

	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
		}
	}

	if err := c.Selectors.Validate(); err != nil {
		return err
	}

	return nil
}

// logLevel resolves LogLevel, then Debug, then Verbose. Validate has
// already rejected unknown names.
func (c *Config) logLevel() logger.Level {
	if c.LogLevel != "" {
		if level, err := logger.ParseLevel(c.LogLevel); err == nil {
			return level
		}
	}
	switch {
	case c.Debug:
		return logger.DebugLevel
	case c.Verbose:
		return logger.InfoLevel
	default:
		return logger.WarnLevel
	}
}

// ListingURL returns the absolute URL of the listing page.
func (c *Config) ListingURL() string {
	return c.PageURL(c.ListingPath)
}

// PageURL joins a site-relative path onto the base URL.
func (c *Config) PageURL(path string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + path
}
