package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/PentesterFlow/apidocs/internal/parser"
)

// JSONWriter writes output in JSON format.
type JSONWriter struct {
	mu     sync.Mutex
	writer io.Writer
	pretty bool
	closed bool
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(w io.Writer, pretty bool) *JSONWriter {
	return &JSONWriter{
		writer: w,
		pretty: pretty,
	}
}

// WriteEndpoints encodes endpoints as a single JSON array followed by a
// newline. An empty or nil slice encodes as [].
func (j *JSONWriter) WriteEndpoints(endpoints []parser.Endpoint) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	out := make([]parser.EndpointJSON, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, ep.ToJSON())
	}

	encoder := json.NewEncoder(j.writer)
	encoder.SetEscapeHTML(false)
	if j.pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(out)
}

// Close closes the writer.
func (j *JSONWriter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.closed = true

	if closer, ok := j.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
