package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/htmlgrader/internal/model"
)

// TextWriter outputs plain text for terminals.
type TextWriter struct {
	baseWriter

	// missingOnly hides selectors that matched.
	missingOnly bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithMissingOnly lists only the selectors that did not match.
func WithMissingOnly(missingOnly bool) TextWriterOption {
	return func(w *TextWriter) {
		w.missingOnly = missingOnly
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run as text.
func (w *TextWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder
	report := reportOf(run)

	writeBanner(&sb, "HTML GRADER REPORT")
	fmt.Fprintf(&sb, "Source:  %s (%s)\n", run.Location, run.Kind)
	fmt.Fprintf(&sb, "Checked: %s\n", run.CheckedAt.Format(timeLayout))
	fmt.Fprintf(&sb, "Score:   %s\n\n", score(report))

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for _, res := range report.Results {
		if w.missingOnly && res.Present {
			continue
		}
		fmt.Fprintf(&sb, "  [%s] %s\n", textMark(res.Present), res.Selector)
	}
	if report.Len() == 0 {
		sb.WriteString("  (no selectors)\n")
	}
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteDiff outputs the comparison of two runs as text.
func (w *TextWriter) WriteDiff(diff *model.Diff) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "HTML GRADER HISTORY DIFF")
	fmt.Fprintf(&sb, "Source:   %s\n", diff.Location)
	fmt.Fprintf(&sb, "Previous: %s  score %s\n",
		diff.Previous.CheckedAt.Format(timeLayout), score(reportOf(diff.Previous)))
	fmt.Fprintf(&sb, "Current:  %s  score %s\n",
		diff.Current.CheckedAt.Format(timeLayout), score(reportOf(diff.Current)))
	if diff.DocumentChanged {
		sb.WriteString("Document: changed\n\n")
	} else {
		sb.WriteString("Document: unchanged\n\n")
	}

	if !diff.HasChanges() {
		sb.WriteString("No selector changed state.\n")
		return w.output.Write([]byte(sb.String()))
	}

	writeList(&sb, "+", "NOW PRESENT", diff.NowPresent)
	writeList(&sb, "-", "NOW MISSING", diff.NowMissing)
	writeList(&sb, "*", "ADDED CHECKS", diff.Added)
	writeList(&sb, "x", "REMOVED CHECKS", diff.Removed)

	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func writeList(sb *strings.Builder, mark, title string, selectors []string) {
	if len(selectors) == 0 {
		return
	}
	sb.WriteString(title)
	sb.WriteString("\n")
	for _, s := range selectors {
		fmt.Fprintf(sb, "  %s %s\n", mark, s)
	}
	sb.WriteString("\n")
}

func textMark(present bool) string {
	if present {
		return "PASS"
	}
	return "FAIL"
}
