// Package output provides output formatting for the docs scraper.
package output

import (
	"fmt"
	"io"

	"github.com/PentesterFlow/apidocs/internal/parser"
)

// Writer defines the interface for output writers.
type Writer interface {
	// WriteEndpoints writes the complete result set in one pass.
	WriteEndpoints(endpoints []parser.Endpoint) error

	// Close closes the writer
	Close() error
}

// Config holds output configuration.
type Config struct {
	Format   string `json:"format" yaml:"format"`
	Pretty   bool   `json:"pretty" yaml:"pretty"`
	FilePath string `json:"file_path" yaml:"file_path"`
}

// NewWriter creates a new output writer.
func NewWriter(w io.Writer, config Config) (Writer, error) {
	switch config.Format {
	case "", "json":
		return NewJSONWriter(w, config.Pretty), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", config.Format)
	}
}

// DiagnosticWriter writes one line per dropped parameter.
type DiagnosticWriter struct {
	w io.Writer
}

// NewDiagnosticWriter creates a diagnostic writer.
func NewDiagnosticWriter(w io.Writer) *DiagnosticWriter {
	return &DiagnosticWriter{w: w}
}

// WriteDiagnostic writes a single diagnostic line.
func (d *DiagnosticWriter) WriteDiagnostic(diag parser.Diagnostic) error {
	_, err := fmt.Fprintln(d.w, diag.String())
	return err
}
