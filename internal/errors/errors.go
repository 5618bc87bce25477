// Package errors provides error types and handling for the docs scraper.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType categorizes errors for reporting.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Network represents network-related errors (DNS, connection).
	Network
	// Timeout represents timeout errors.
	Timeout
	// NotFound represents 404 errors.
	NotFound
	// ServerError represents 5xx errors.
	ServerError
	// ClientError represents other 4xx errors.
	ClientError
	// Parse represents HTML parsing failures.
	Parse
	// Structure represents a page missing an expected element.
	Structure
	// Cancelled represents context cancellation.
	Cancelled
	// TooLarge represents a page body over the size cap.
	TooLarge
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Network:
		return "network"
	case Timeout:
		return "timeout"
	case NotFound:
		return "not_found"
	case ServerError:
		return "server_error"
	case ClientError:
		return "client_error"
	case Parse:
		return "parse"
	case Structure:
		return "structure"
	case Cancelled:
		return "cancelled"
	case TooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// ScrapeError represents a categorized scrape error.
type ScrapeError struct {
	Type       ErrorType
	URL        string
	Operation  string
	Message    string
	Cause      error
	StatusCode int
}

// Error implements the error interface.
func (e *ScrapeError) Error() string {
	where := e.Operation
	if e.URL != "" {
		where = fmt.Sprintf("%s on %s", e.Operation, e.URL)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error during %s: %s (caused by: %v)",
			e.Type.String(), where, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error during %s: %s", e.Type.String(), where, e.Message)
}

// Unwrap returns the underlying error.
func (e *ScrapeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ScrapeError of the same type.
func (e *ScrapeError) Is(target error) bool {
	t, ok := target.(*ScrapeError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a new ScrapeError.
func New(errType ErrorType, url, operation, message string, cause error) *ScrapeError {
	return &ScrapeError{
		Type:      errType,
		URL:       url,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(url, operation string, cause error) *ScrapeError {
	return New(Network, url, operation, "network failure", cause)
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(url, operation string, cause error) *ScrapeError {
	return New(Timeout, url, operation, "request timed out", cause)
}

// NewParseError creates a parse error.
func NewParseError(url, operation string, cause error) *ScrapeError {
	return New(Parse, url, operation, "parsing failed", cause)
}

// NewStructureError creates an error for a page missing an expected element.
func NewStructureError(url, operation, message string) *ScrapeError {
	return New(Structure, url, operation, message, nil)
}

// NewCancelledError creates a cancelled error.
func NewCancelledError(url, operation string) *ScrapeError {
	return New(Cancelled, url, operation, "operation cancelled", nil)
}

// Categorize determines the error type from a transport error.
func Categorize(err error, url string) *ScrapeError {
	if err == nil {
		return nil
	}

	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr
	}

	if errors.Is(err, context.Canceled) {
		return NewCancelledError(url, "request")
	}

	if isTimeout(err) {
		return NewTimeoutError(url, "request", err)
	}

	if isNetworkError(err) {
		return NewNetworkError(url, "request", err)
	}

	return New(Unknown, url, "request", err.Error(), err)
}

// CategorizeHTTPStatus creates an error from a non-2xx status code.
func CategorizeHTTPStatus(statusCode int, url string) *ScrapeError {
	var err *ScrapeError
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == 404:
		err = New(NotFound, url, "request", "page not found", nil)
	case statusCode >= 500:
		err = New(ServerError, url, "request", fmt.Sprintf("server returned %d", statusCode), nil)
	default:
		err = New(ClientError, url, "request", fmt.Sprintf("unexpected status %d", statusCode), nil)
	}
	err.StatusCode = statusCode
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return strings.Contains(err.Error(), "timeout")
}

func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

// GetErrorType extracts the error type from an error.
func GetErrorType(err error) ErrorType {
	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr.Type
	}
	return Unknown
}

// GetStatusCode extracts the status code from an error.
func GetStatusCode(err error) int {
	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr.StatusCode
	}
	return 0
}
