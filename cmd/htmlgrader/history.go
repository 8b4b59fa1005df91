package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/htmlgrader/internal/config"
	"github.com/nao1215/htmlgrader/internal/database"
	"github.com/nao1215/htmlgrader/internal/model"
	"github.com/nao1215/htmlgrader/internal/report"
)

// ErrNotEnoughRuns is returned by --diff when a source has fewer than two runs.
var ErrNotEnoughRuns = errors.New("at least two saved runs are needed to compare")

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source]",
		Short: "Show saved grading runs",
		Long: `History lists runs recorded with --save and compares them.

A source is the file path or URL that was graded. File paths may be given
relative to the current directory.

Examples:
  # List every graded source
  htmlgrader history --list-sources

  # List the runs of a file
  htmlgrader history index.html

  # Show which selectors changed between the last two runs
  htmlgrader history --diff index.html

  # Same, as Markdown
  htmlgrader history --diff -m https://example.com/

  # Show one saved run
  htmlgrader history --show 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-sources", "L", false,
		"List all sources in the history database")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().Int64("show", 0,
		"Show the saved run with this ID")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the two latest runs of the source")
	cmd.Flags().BoolP("json", "j", false,
		"Output the comparison in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the comparison in Markdown format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	listSources, err := flags.GetBool("list-sources")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := flags.GetInt64("show")
	if err != nil {
		return err
	}
	diff, err := flags.GetBool("diff")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if !listSources && showID == 0 && len(args) == 0 {
		return errors.New("source is required (use --list-sources to see graded sources)")
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	format := report.FormatText
	switch {
	case jsonOutput:
		format = report.FormatJSON
	case markdownOutput:
		format = report.FormatMarkdown
	}

	switch {
	case listSources:
		return listHistorySources(ctx, db, out)
	case showID != 0:
		return showHistoryRun(ctx, db, out, showID, format)
	}

	location := resolveLocation(args[0])
	if !diff {
		return listHistoryRuns(ctx, db, out, location, limit)
	}
	return diffLatestRuns(ctx, db, out, location, format)
}

// resolveLocation turns an existing file path into the absolute form used
// when runs are saved. URLs and unknown paths are returned unchanged.
func resolveLocation(arg string) string {
	if strings.Contains(arg, "://") {
		return arg
	}
	if _, err := os.Stat(arg); err != nil {
		return arg
	}
	if abs, err := filepath.Abs(arg); err == nil {
		return abs
	}
	return arg
}

// listHistorySources prints every source with saved runs.
func listHistorySources(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Fprintln(out, "No saved runs found in the history database.")
		fmt.Fprintln(out, "\nUse 'htmlgrader --save ...' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Graded sources (%d):\n\n", len(sources))
	fmt.Fprintf(out, "  %-4s  %-5s  %-20s  %s\n", "Kind", "Runs", "Last checked", "Source")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, s := range sources {
		fmt.Fprintf(out, "  %-4s  %-5d  %-20s  %s\n",
			s.Kind, s.Runs, s.LastChecked.Format("2006-01-02 15:04:05"), s.Location)
	}
	fmt.Fprintln(out, "\nUse 'htmlgrader history <source>' to see the runs of a source.")
	return nil
}

// listHistoryRuns prints the runs of one source, newest first.
func listHistoryRuns(ctx context.Context, db *database.HistoryDB, out io.Writer, location string, limit int) error {
	runs, err := db.ListRuns(ctx, location, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No saved runs found for %s\n", location)
		return nil
	}

	fmt.Fprintf(out, "Runs for %s (%d shown):\n\n", location, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-7s  %s\n", "ID", "Date", "Score", "Document")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-7s  %s\n",
			run.ID,
			run.CheckedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d/%d", run.Report.PresentCount(), run.Report.Len()),
			shortHash(run.DocumentHash),
		)
	}
	fmt.Fprintln(out, "\nUse 'htmlgrader history --diff <source>' to compare the latest two runs.")
	return nil
}

// showHistoryRun writes one saved run in format.
func showHistoryRun(ctx context.Context, db *database.HistoryDB, out io.Writer, id int64, format report.Format) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	w, err := report.New(format, out)
	if err != nil {
		return err
	}
	_, err = w.Write(run)
	return err
}

// diffLatestRuns compares the two most recent runs of location.
func diffLatestRuns(ctx context.Context, db *database.HistoryDB, out io.Writer, location string, format report.Format) error {
	runs, err := db.LatestRuns(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}
	if len(runs) < 2 {
		return fmt.Errorf("%w: %s has %d", ErrNotEnoughRuns, location, len(runs))
	}

	w, err := report.New(format, out)
	if err != nil {
		return err
	}
	_, err = w.WriteDiff(model.NewDiff(runs[0], runs[1]))
	return err
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
