// Package scraper drives a one-shot scrape of an API documentation site:
// list reference pages, parse each one, infer parameter types.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/PentesterFlow/apidocs/internal/errors"
	fetch "github.com/PentesterFlow/apidocs/internal/http"
	"github.com/PentesterFlow/apidocs/internal/infer"
	"github.com/PentesterFlow/apidocs/internal/logger"
	"github.com/PentesterFlow/apidocs/internal/metrics"
	"github.com/PentesterFlow/apidocs/internal/output"
	"github.com/PentesterFlow/apidocs/internal/parser"
	"github.com/PentesterFlow/apidocs/internal/ratelimit"
)

// Scraper lists and parses every reference page of a documentation site.
type Scraper struct {
	config      *Config
	transport   http.RoundTripper
	logger      *logger.Logger
	diagnostics io.Writer

	client  *fetch.Client
	limiter *ratelimit.Limiter
	parser  *parser.EndpointParser
	metrics *metrics.Collector
	diag    *output.DiagnosticWriter
}

// Result is the outcome of a complete run.
type Result struct {
	Endpoints   []parser.Endpoint
	Diagnostics []parser.Diagnostic
	Stats       metrics.Snapshot
	StartedAt   time.Time
	CompletedAt time.Time
}

// New creates a scraper. The configuration is validated once all options
// are applied.
func New(opts ...Option) (*Scraper, error) {
	s := &Scraper{
		config:      DefaultConfig(),
		diagnostics: os.Stderr,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if s.logger == nil {
		logCfg := logger.DefaultConfig()
		logCfg.Level = s.config.logLevel()
		logCfg.Component = "scraper"
		s.logger = logger.New(logCfg)
	}

	s.metrics = metrics.New()
	s.limiter = ratelimit.NewLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst)
	s.client = fetch.NewClient(fetch.Config{
		Timeout:     s.config.Timeout,
		UserAgent:   s.config.UserAgent,
		Headers:     s.config.CustomHeaders,
		Limiter:     s.limiter,
		Metrics:     s.metrics,
		Transport:   s.transport,
		MaxBodySize: s.config.MaxBodySize,
	})
	s.parser = parser.NewEndpointParser(s.config.Selectors)
	s.diag = output.NewDiagnosticWriter(s.diagnostics)

	return s, nil
}

// Config returns the effective configuration.
func (s *Scraper) Config() *Config {
	return s.config
}

// Run lists every reference page and parses it in order. Any listing,
// fetch or page-structure failure aborts the run; dropped parameters are
// reported through the diagnostics writer and collected in the result.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	defer s.client.Close()

	result := &Result{
		Endpoints:   make([]parser.Endpoint, 0),
		Diagnostics: make([]parser.Diagnostic, 0),
		StartedAt:   time.Now(),
	}

	s.logger.WithURL(s.config.ListingURL()).
		WithField("rate_limit", s.limiter.Rate()).
		Info("Starting scrape")

	paths, err := s.ListEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		ep, diags, err := s.ScrapeEndpoint(ctx, path)
		if err != nil {
			return nil, err
		}

		result.Endpoints = append(result.Endpoints, *ep)
		result.Diagnostics = append(result.Diagnostics, diags...)
	}

	result.CompletedAt = time.Now()
	result.Stats = s.metrics.Snapshot()
	s.logger.StatsEvent(result.Stats.Summary())

	return result, nil
}

// ListEndpoints fetches the listing page and returns the reference paths
// in document order.
func (s *Scraper) ListEndpoints(ctx context.Context) ([]string, error) {
	listingURL := s.config.ListingURL()
	log := s.logger.WithComponent("lister")

	doc, err := s.fetch(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	paths, err := parser.ParseListing(doc, s.config.Selectors)
	if err != nil {
		return nil, s.fail(err, listingURL, "list_endpoints")
	}

	s.metrics.RecordPathsListed(len(paths))
	log.WithURL(listingURL).Infof("Found %d reference pages", len(paths))
	return paths, nil
}

// ScrapeEndpoint fetches one reference page, parses it and infers the type
// of every parameter.
func (s *Scraper) ScrapeEndpoint(ctx context.Context, path string) (*parser.Endpoint, []parser.Diagnostic, error) {
	pageURL := s.config.PageURL(path)
	log := s.logger.WithComponent("parser").WithField("path", path)
	log.Debugf("Scraping %s", pageURL)

	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	ep, diags, err := s.parser.Parse(doc)
	if err != nil {
		return nil, nil, s.fail(err, pageURL, "parse_endpoint")
	}

	for _, d := range diags {
		if werr := s.diag.WriteDiagnostic(d); werr != nil {
			log.WithError(werr).Warn("Failed to write diagnostic")
		}
	}

	infer.Apply(ep)

	s.metrics.RecordEndpoint(len(ep.Params), len(diags))
	log.EndpointEvent(ep.Method, ep.Path, len(ep.Params), len(diags))
	return ep, diags, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	start := time.Now()
	doc, err := s.client.GetDocument(ctx, pageURL)
	if err != nil {
		log := s.logger
		if code := errors.GetStatusCode(err); code != 0 {
			log = log.WithField("status", code)
		}
		log.ErrorEvent(err, pageURL, "fetch")
		return nil, err
	}
	s.logger.RequestEvent(pageURL, time.Since(start))
	return doc, nil
}

// fail attaches the page URL to a parse error and records it.
func (s *Scraper) fail(err error, pageURL, operation string) error {
	s.metrics.RecordError(errors.GetErrorType(err).String())
	s.logger.ErrorEvent(err, pageURL, operation)
	return fmt.Errorf("%s %s: %w", operation, pageURL, err)
}
