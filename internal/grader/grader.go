package grader

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/nao1215/htmlgrader/internal/checks"
	"github.com/nao1215/htmlgrader/internal/model"
)

// Grader matches a check list against documents.
type Grader struct {
	logger *slog.Logger
}

// Option configures a Grader.
type Option func(*Grader)

// WithLogger sets the logger used for per-selector debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Grader) {
		g.logger = logger
	}
}

// New creates a Grader.
func New(opts ...Option) *Grader {
	g := &Grader{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Compile parses a selector group such as "h1, a[href]".
func Compile(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, &SelectorError{Selector: selector, Err: err}
	}
	return sel, nil
}

// isBlank reports whether selector selects nothing at all. A blank
// selector is graded as absent rather than rejected.
func isBlank(selector string) bool {
	return strings.TrimSpace(selector) == ""
}

// CompileAll compiles every selector of the list, stopping at the first
// invalid one. Blank selectors yield a nil entry.
func CompileAll(list checks.List) ([]cascadia.Selector, error) {
	out := make([]cascadia.Selector, len(list))
	for i, sel := range list {
		if isBlank(sel) {
			continue
		}
		m, err := Compile(sel)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// Grade sorts and deduplicates list, then records for each selector whether
// doc contains at least one matching node. The report order is the sorted
// order. Any invalid selector aborts grading and no report is returned.
func (g *Grader) Grade(doc *goquery.Document, list checks.List) (*model.Report, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	sorted := list.Sorted()
	matchers, err := CompileAll(sorted)
	if err != nil {
		return nil, err
	}

	report := model.NewReport(len(sorted))
	for i, sel := range sorted {
		if matchers[i] == nil {
			report.Set(sel, false)
			g.logger.Debug("blank selector graded as absent", "selector", sel)
			continue
		}
		count := doc.FindMatcher(matchers[i]).Length()
		report.Set(sel, count > 0)
		g.logger.Debug("selector evaluated", "selector", sel, "matches", count)
	}

	return report, nil
}

// Grade is a convenience wrapper around New().Grade.
func Grade(doc *goquery.Document, list checks.List) (*model.Report, error) {
	return New().Grade(doc, list)
}
