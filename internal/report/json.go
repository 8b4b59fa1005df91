package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/htmlgrader/internal/model"
)

// DefaultIndent is four spaces, the indentation of the grading output.
const DefaultIndent = "    "

// JSONWriter writes the report object. HTML characters are not escaped, so
// a selector like "div > p" appears as written.
type JSONWriter struct {
	baseWriter

	// indent is the per-level indentation. Empty means compact output.
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithCompact disables indentation.
func WithCompact() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = ""
	}
}

// NewJSONWriter creates a JSONWriter with four-space indentation.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		indent:     DefaultIndent,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs only the selector to boolean object of the run.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	report := run.Report
	if report == nil {
		report = model.NewReport(0)
	}
	return w.writeJSON(report)
}

// WriteDiff outputs the diff including both runs.
func (w *JSONWriter) WriteDiff(diff *model.Diff) (int, error) {
	return w.writeJSON(diff)
}

// writeJSON encodes v followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
