package scraper

import (
	"io"
	"net/http"
	"time"

	"github.com/PentesterFlow/apidocs/internal/logger"
	"github.com/PentesterFlow/apidocs/internal/parser"
)

// Option is a functional option for configuring the Scraper.
type Option func(*Scraper) error

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(s *Scraper) error {
		if config != nil {
			s.config = config
		}
		return nil
	}
}

// WithBaseURL sets the documentation site root.
func WithBaseURL(url string) Option {
	return func(s *Scraper) error {
		s.config.BaseURL = url
		return nil
	}
}

// WithListingPath sets the path of the listing page.
func WithListingPath(path string) Option {
	return func(s *Scraper) error {
		s.config.ListingPath = path
		return nil
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scraper) error {
		s.config.Timeout = timeout
		return nil
	}
}

// WithMaxBodySize caps the size of a fetched page.
func WithMaxBodySize(n int64) Option {
	return func(s *Scraper) error {
		s.config.MaxBodySize = n
		return nil
	}
}

// WithLogLevel sets the log level by name.
func WithLogLevel(level string) Option {
	return func(s *Scraper) error {
		s.config.LogLevel = level
		return nil
	}
}

// WithRateLimit paces requests; rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Scraper) error {
		s.config.RateLimit.RequestsPerSecond = rps
		s.config.RateLimit.Burst = burst
		return nil
	}
}

// WithSelectors overrides the class markers.
func WithSelectors(sel parser.Selectors) Option {
	return func(s *Scraper) error {
		s.config.Selectors = sel
		return nil
	}
}

// WithUserAgent sets the user agent string.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) error {
		s.config.UserAgent = ua
		return nil
	}
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(s *Scraper) error {
		if s.config.CustomHeaders == nil {
			s.config.CustomHeaders = make(map[string]string)
		}
		for k, v := range headers {
			s.config.CustomHeaders[k] = v
		}
		return nil
	}
}

// WithTransport sets the HTTP transport used by the fetcher.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Scraper) error {
		s.transport = rt
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) error {
		s.logger = l
		return nil
	}
}

// WithDiagnostics sets where dropped-parameter lines are written.
func WithDiagnostics(w io.Writer) Option {
	return func(s *Scraper) error {
		s.diagnostics = w
		return nil
	}
}

// WithVerbose enables info logging.
func WithVerbose(verbose bool) Option {
	return func(s *Scraper) error {
		s.config.Verbose = verbose
		return nil
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(s *Scraper) error {
		s.config.Debug = debug
		return nil
	}
}
