// Package http provides the page fetcher used by the docs scraper.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/PentesterFlow/apidocs/internal/errors"
	"github.com/PentesterFlow/apidocs/internal/metrics"
	"github.com/PentesterFlow/apidocs/internal/ratelimit"
)

// DefaultMaxBodySize caps how much of a page is read. Larger pages fail
// rather than being parsed truncated.
const DefaultMaxBodySize = 10 * 1024 * 1024

// Client fetches documentation pages and parses them as HTML.
type Client struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	limiter   *ratelimit.Limiter
	metrics   *metrics.Collector
	maxBody   int64
}

// Config holds configuration for the page fetcher.
type Config struct {
	Timeout time.Duration
	// UserAgent replaces the transport default when set.
	UserAgent string
	Headers   map[string]string
	Limiter   *ratelimit.Limiter
	Metrics   *metrics.Collector
	Transport http.RoundTripper
	// MaxBodySize defaults to DefaultMaxBodySize.
	MaxBodySize int64
}

// DefaultConfig returns fetcher defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// NewClient creates a new page fetcher.
func NewClient(config Config) *Client {
	transport := config.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		}
	}

	limiter := config.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited()
	}
	collector := config.Metrics
	if collector == nil {
		collector = metrics.New()
	}
	maxBody := config.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		userAgent: config.UserAgent,
		headers:   config.Headers,
		limiter:   limiter,
		metrics:   collector,
		maxBody:   maxBody,
	}
}

// GetDocument fetches targetURL and parses the body as UTF-8 HTML.
// Any non-2xx response is an error.
func (c *Client) GetDocument(ctx context.Context, targetURL string) (*goquery.Document, error) {
	body, err := c.Get(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		c.metrics.RecordError(errors.Parse.String())
		return nil, errors.NewParseError(targetURL, "parse_html", err)
	}
	return doc, nil
}

// Get fetches targetURL and returns the raw body. Only the configured user
// agent and headers are added to what the transport sends.
func (c *Client) Get(ctx context.Context, targetURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.fail(errors.Categorize(err, targetURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, c.fail(errors.New(errors.Parse, targetURL, "request_creation", "failed to create request", err))
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	c.metrics.RecordRequest()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.fail(errors.Categorize(err, targetURL))
	}
	defer resp.Body.Close()

	if httpErr := errors.CategorizeHTTPStatus(resp.StatusCode, targetURL); httpErr != nil {
		return nil, c.fail(httpErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, c.fail(errors.NewNetworkError(targetURL, "body_read", err))
	}
	if int64(len(body)) > c.maxBody {
		return nil, c.fail(errors.New(errors.TooLarge, targetURL, "body_read",
			fmt.Sprintf("page exceeds %d bytes", c.maxBody), nil))
	}

	c.metrics.RecordBytes(int64(len(body)))
	c.metrics.RecordResponseTime(time.Since(start))
	return body, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

func (c *Client) fail(err *errors.ScrapeError) error {
	c.metrics.RecordError(err.Type.String())
	return err
}
