package report

import (
	"errors"
	"io"

	"github.com/nao1215/htmlgrader/internal/model"
)

// ErrUnknownFormat is returned by New for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Format names an output format.
type Format string

const (
	// FormatJSON is the default selector to boolean object.
	FormatJSON Format = "json"

	// FormatMarkdown is a Markdown document with a table and pie chart.
	FormatMarkdown Format = "markdown"

	// FormatText is plain text for terminals.
	FormatText Format = "text"
)

// Writer writes runs and diffs in one format.
type Writer interface {
	// Write outputs the result of one run.
	Write(run *model.Run) (int, error)

	// WriteDiff outputs the comparison of two runs.
	WriteDiff(diff *model.Diff) (int, error)
}

// Options tune the writers returned by NewWithOptions.
type Options struct {
	// Compact disables JSON indentation.
	Compact bool

	// MissingOnly lists only the selectors that did not match in text
	// reports.
	MissingOnly bool
}

// New returns the writer for format with default options.
func New(format Format, output io.Writer) (Writer, error) {
	return NewWithOptions(format, output, Options{})
}

// NewWithOptions returns the writer for format. Options that do not apply
// to the format are ignored.
func NewWithOptions(format Format, output io.Writer, opts Options) (Writer, error) {
	switch format {
	case FormatJSON, "":
		var jsonOpts []JSONWriterOption
		if opts.Compact {
			jsonOpts = append(jsonOpts, WithCompact())
		}
		return NewJSONWriter(output, jsonOpts...), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatText:
		return NewTextWriter(output, WithMissingOnly(opts.MissingOnly)), nil
	default:
		return nil, ErrUnknownFormat
	}
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used by the human-readable writers.
const timeLayout = "2006-01-02 15:04:05 MST"
