package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/htmlgrader/internal/model"
)

// MarkdownWriter renders runs as Markdown, for pasting into feedback to
// students or into an issue.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run as Markdown.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)
	report := reportOf(run)

	md.H1("HTML Grader Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + run.Location + "`"},
			{"Kind", run.Kind.String()},
			{"Checked", run.CheckedAt.Format(timeLayout)},
			{"Score", score(report)},
		},
	})
	md.PlainText("")

	w.writeResults(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.Report) {
	md.H2("Results")
	md.PlainText("")

	if report.Len() == 0 {
		md.PlainText("No selectors were checked.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Results))
	for i, res := range report.Results {
		rows[i] = []string{codeCell(res.Selector), presenceMark(res.Present)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Selector", "Present"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Selector Coverage"),
		piechart.WithShowData(true),
	)
	if n := report.PresentCount(); n > 0 {
		chart.LabelAndIntValue("Present", uint64(n))
	}
	if n := report.MissingCount(); n > 0 {
		chart.LabelAndIntValue("Missing", uint64(n))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	if report.AllPresent() {
		md.Tip("Every selector matched the document.")
	} else {
		md.Warningf("%d of %d selector(s) did not match the document.", report.MissingCount(), report.Len())
	}
	md.PlainText("")
}

// WriteDiff outputs the comparison of two runs as Markdown.
func (w *MarkdownWriter) WriteDiff(diff *model.Diff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("HTML Grader History Diff")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Previous", "Current"},
		Rows: [][]string{
			{"Checked", diff.Previous.CheckedAt.Format(timeLayout), diff.Current.CheckedAt.Format(timeLayout)},
			{"Score", score(reportOf(diff.Previous)), score(reportOf(diff.Current))},
		},
	})
	md.PlainText("")
	md.PlainTextf("Source: `%s`", diff.Location)
	md.PlainText("")

	if diff.DocumentChanged {
		md.Note("The document changed between the two runs.")
	} else {
		md.Note("The document is identical in both runs.")
	}
	md.PlainText("")

	if !diff.HasChanges() {
		md.Tip("No selector changed state.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	sections := []struct {
		title     string
		selectors []string
	}{
		{"Now present", diff.NowPresent},
		{"Now missing", diff.NowMissing},
		{"Added checks", diff.Added},
		{"Removed checks", diff.Removed},
	}
	for _, s := range sections {
		if len(s.selectors) == 0 {
			continue
		}
		md.H2(s.title)
		md.PlainText("")
		items := make([]string, len(s.selectors))
		for i, sel := range s.selectors {
			items[i] = "`" + sel + "`"
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [htmlgrader](https://github.com/nao1215/htmlgrader)*")
}

// codeCell formats a selector for a table cell. Pipes would end the cell.
func codeCell(s string) string {
	return "`" + strings.ReplaceAll(s, "|", `\|`) + "`"
}

func presenceMark(present bool) string {
	if present {
		return "✅ yes"
	}
	return "❌ no"
}

// score formats "present/total".
func score(report *model.Report) string {
	return strconv.Itoa(report.PresentCount()) + "/" + strconv.Itoa(report.Len())
}

// reportOf never returns nil.
func reportOf(run *model.Run) *model.Report {
	if run == nil || run.Report == nil {
		return model.NewReport(0)
	}
	return run.Report
}
