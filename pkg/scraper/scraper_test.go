package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/PentesterFlow/apidocs/internal/errors"
	"github.com/PentesterFlow/apidocs/internal/logger"
	"github.com/PentesterFlow/apidocs/internal/parser"
)

const listingPage = `
<html><body>
<ul class="menu">
	<li class="leaf"><a href="/rest/reference/get/statuses/show/%3Aid">GET statuses/show/:id</a></li>
	<li class="leaf"><a href="/rest/public/timelines">Timelines</a></li>
	<li class="leaf"><a href="/rest/reference/post/statuses/update">POST statuses/update</a></li>
</ul>
</body></html>
`

const showPage = `
<html><body>
<h1>GET statuses/show/:id</h1>
<div class="Node-apiDocsUrl"><div class="Field-items-item">https://api.twitter.com/1.1/statuses/show/:id.json</div></div>
<div class="Node-apiDocsParams">
	<div class="parameter"><span>id <span>required</span></span>
		<p>The numerical ID of the desired Tweet.</p>
		<p><strong>Example Values</strong>: <code>123</code></p></div>
	<div class="parameter"><span>include_my_retweet</span>
		<p>When set to true, any Tweets returned that have been retweeted by the authenticating user will include an additional current_user_retweet node.</p>
		<p><strong>Example Values</strong>: <code>true</code></p></div>
</div>
</body></html>
`

const updatePage = `
<html><body>
<h1>POST statuses/update</h1>
<div class="Node-apiDocsUrl"><div class="Field-items-item">https://api.twitter.com/1.1/statuses/update.json</div></div>
<div class="Node-apiDocsParams">
	<div class="parameter"><span>status <span>required</span></span><p>The text of your status update.</p></div>
	<div class="parameter"><span>in_reply_to_status_id</span></div>
	<div class="parameter"><span>media_ids</span><p>A list of media_ids to associate with the Tweet.</p></div>
</div>
</body></html>
`

func newDocsServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}))
	t.Cleanup(server.Close)
	return server
}

func defaultPages() map[string]string {
	return map[string]string{
		"/rest/public":                          listingPage,
		"/rest/reference/get/statuses/show/:id": showPage,
		"/rest/reference/post/statuses/update":  updatePage,
	}
}

func newTestScraper(t *testing.T, baseURL string, diag *bytes.Buffer) *Scraper {
	t.Helper()
	s, err := New(
		WithBaseURL(baseURL),
		WithLogger(logger.Nop()),
		WithDiagnostics(diag),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s, err := New(WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Config().BaseURL != "https://dev.twitter.com" {
		t.Errorf("BaseURL = %q, want default", s.Config().BaseURL)
	}
	if s.client == nil || s.parser == nil || s.metrics == nil || s.diag == nil {
		t.Error("New() should initialize all components")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(WithBaseURL("ftp://x")); err == nil {
		t.Error("New() with non-http base URL should fail")
	}
	if _, err := New(WithSelectors(parser.Selectors{})); err == nil {
		t.Error("New() with empty selectors should fail")
	}
}

func TestScraper_Run(t *testing.T) {
	server := newDocsServer(t, defaultPages())
	var diag bytes.Buffer
	s := newTestScraper(t, server.URL, &diag)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []parser.Endpoint{
		{
			URL:    "https://api.twitter.com/1.1/statuses/show/:id.json",
			Path:   "statuses/show/:id",
			Method: "GET",
			Params: []parser.Parameter{
				{
					Name:        "id",
					Required:    true,
					Description: "The numerical ID of the desired Tweet.",
					Example:     "123",
					Type:        "int",
				},
				{
					Name:        "include_my_retweet",
					Description: "When set to true, any Tweets returned that have been retweeted by the authenticating user will include an additional current_user_retweet node.",
					Example:     "true",
					Type:        "bool",
				},
			},
		},
		{
			URL:    "https://api.twitter.com/1.1/statuses/update.json",
			Path:   "statuses/update",
			Method: "POST",
			Params: []parser.Parameter{
				{
					Name:        "status",
					Required:    true,
					Description: "The text of your status update.",
					Type:        "string",
				},
				{
					Name:        "media_ids",
					Description: "A list of media_ids to associate with the Tweet.",
					Type:        "search_ids",
				},
			},
		},
	}
	if diff := cmp.Diff(want, result.Endpoints); diff != "" {
		t.Errorf("Run() endpoints mismatch (-want +got):\n%s", diff)
	}

	if len(result.Diagnostics) != 1 {
		t.Fatalf("len(Diagnostics) = %d, want 1", len(result.Diagnostics))
	}
	lines := strings.Split(strings.TrimSpace(diag.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("diagnostic lines = %d, want 1: %q", len(lines), diag.String())
	}
	if !strings.HasPrefix(lines[0], "Check https://api.twitter.com/1.1/statuses/update.json, got error ") {
		t.Errorf("diagnostic = %q", lines[0])
	}

	if result.Stats.RequestsTotal != 3 {
		t.Errorf("RequestsTotal = %d, want 3", result.Stats.RequestsTotal)
	}
	if result.Stats.PathsListed != 2 {
		t.Errorf("PathsListed = %d, want 2", result.Stats.PathsListed)
	}
	if result.Stats.ParamsDropped != 1 {
		t.Errorf("ParamsDropped = %d, want 1", result.Stats.ParamsDropped)
	}
	if result.CompletedAt.Before(result.StartedAt) {
		t.Error("CompletedAt should not precede StartedAt")
	}
}

func TestScraper_Run_EmptyListing(t *testing.T) {
	server := newDocsServer(t, map[string]string{"/rest/public": "<html><body></body></html>"})
	var diag bytes.Buffer

	result, err := newTestScraper(t, server.URL, &diag).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Endpoints) != 0 {
		t.Errorf("len(Endpoints) = %d, want 0", len(result.Endpoints))
	}
}

func TestScraper_Run_FatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(pages map[string]string)
		wantType errors.ErrorType
	}{
		{
			name:     "listing missing",
			mutate:   func(p map[string]string) { delete(p, "/rest/public") },
			wantType: errors.NotFound,
		},
		{
			name: "malformed listing leaf",
			mutate: func(p map[string]string) {
				p["/rest/public"] = `<ul><li class="leaf">no link</li></ul>`
			},
			wantType: errors.Structure,
		},
		{
			name:     "endpoint page missing",
			mutate:   func(p map[string]string) { delete(p, "/rest/reference/post/statuses/update") },
			wantType: errors.NotFound,
		},
		{
			name: "endpoint heading malformed",
			mutate: func(p map[string]string) {
				p["/rest/reference/post/statuses/update"] = strings.Replace(updatePage, "POST statuses/update", "POST", 1)
			},
			wantType: errors.Structure,
		},
		{
			name: "params region missing",
			mutate: func(p map[string]string) {
				p["/rest/reference/get/statuses/show/:id"] = strings.Replace(showPage, "Node-apiDocsParams", "Other", 1)
			},
			wantType: errors.Structure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := defaultPages()
			tt.mutate(pages)
			server := newDocsServer(t, pages)
			var diag bytes.Buffer

			result, err := newTestScraper(t, server.URL, &diag).Run(context.Background())
			if err == nil {
				t.Fatalf("Run() = %+v, want error", result)
			}
			if result != nil {
				t.Error("Run() should not return a partial result on failure")
			}
			if got := errors.GetErrorType(err); got != tt.wantType {
				t.Errorf("error type = %v, want %v (%v)", got, tt.wantType, err)
			}
		})
	}
}

func TestScraper_Run_Cancelled(t *testing.T) {
	server := newDocsServer(t, defaultPages())
	var diag bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScraper(t, server.URL, &diag).Run(ctx)
	if got := errors.GetErrorType(err); got != errors.Cancelled {
		t.Errorf("error type = %v, want cancelled", got)
	}
}

func TestScraper_ScrapeEndpoint(t *testing.T) {
	server := newDocsServer(t, defaultPages())
	var diag bytes.Buffer
	s := newTestScraper(t, server.URL, &diag)

	ep, diags, err := s.ScrapeEndpoint(context.Background(), "/rest/reference/get/statuses/show/:id")
	if err != nil {
		t.Fatalf("ScrapeEndpoint() error = %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("len(diags) = %d, want 0", len(diags))
	}
	if ep.Method != "GET" || ep.Path != "statuses/show/:id" {
		t.Errorf("Method, Path = %q, %q", ep.Method, ep.Path)
	}
	for _, p := range ep.Params {
		if p.Type == "" {
			t.Errorf("param %q has no inferred type", p.Name)
		}
	}
}

func TestScraper_Headers(t *testing.T) {
	var gotUA, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Docs")
		fmt.Fprint(w, "<html></html>")
	}))
	defer server.Close()

	s, err := New(
		WithBaseURL(server.URL),
		WithUserAgent("docs-test"),
		WithHeaders(map[string]string{"X-Docs": "1"}),
		WithLogger(logger.Nop()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.ListEndpoints(context.Background()); err != nil {
		t.Fatalf("ListEndpoints() error = %v", err)
	}
	if gotUA != "docs-test" || gotHeader != "1" {
		t.Errorf("headers = %q, %q; want docs-test, 1", gotUA, gotHeader)
	}
}

func TestScraper_DefaultHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		fmt.Fprint(w, "<html></html>")
	}))
	defer server.Close()

	s, err := New(WithBaseURL(server.URL), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.ListEndpoints(context.Background()); err != nil {
		t.Fatalf("ListEndpoints() error = %v", err)
	}

	if ua := got.Get("User-Agent"); !strings.HasPrefix(ua, "Go-http-client/") {
		t.Errorf("User-Agent = %q, want the transport default", ua)
	}
	if accept := got.Get("Accept"); accept != "" {
		t.Errorf("Accept = %q, want none", accept)
	}
}

func TestScraper_Run_PageTooLarge(t *testing.T) {
	pages := defaultPages()
	// The only leaf sits past the cap.
	pages["/rest/public"] = "<html><body><!--" + strings.Repeat("pad", 2048) + "-->" +
		`<ul><li class="leaf"><a href="/rest/reference/post/statuses/update">x</a></li></ul></body></html>`
	server := newDocsServer(t, pages)
	var diag bytes.Buffer

	s, err := New(
		WithBaseURL(server.URL),
		WithMaxBodySize(4096),
		WithLogger(logger.Nop()),
		WithDiagnostics(&diag),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := s.Run(context.Background())
	if err == nil {
		t.Fatalf("Run() = %d endpoints, want error", len(result.Endpoints))
	}
	if got := errors.GetErrorType(err); got != errors.TooLarge {
		t.Errorf("error type = %v, want too_large (%v)", got, err)
	}
}

func TestScraper_LogLevel(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		level logger.Level
	}{
		{"default", nil, logger.WarnLevel},
		{"verbose", []Option{WithVerbose(true)}, logger.InfoLevel},
		{"debug", []Option{WithVerbose(true), WithDebug(true)}, logger.DebugLevel},
		{"explicit wins", []Option{WithDebug(true), WithLogLevel("error")}, logger.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.opts...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := s.Config().logLevel(); got != tt.level {
				t.Errorf("logLevel() = %v, want %v", got, tt.level)
			}
		})
	}

	if _, err := New(WithLogLevel("loud")); err == nil {
		t.Error("New() with unknown log level should fail")
	}
}
