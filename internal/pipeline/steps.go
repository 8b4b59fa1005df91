package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/htmlgrader/internal/checks"
	"github.com/nao1215/htmlgrader/internal/database"
	"github.com/nao1215/htmlgrader/internal/grader"
	"github.com/nao1215/htmlgrader/internal/model"
	"github.com/nao1215/htmlgrader/internal/report"
	"github.com/nao1215/htmlgrader/internal/source"
)

// ErrNoSource is returned by LoadStep when neither a file nor a URL is set.
var ErrNoSource = errors.New("no document source")

// LoadStep reads the checks file and the document.
//
// In URL mode the checks file is loaded while the page is fetched; the
// step returns once both are done, or with the first error.
type LoadStep struct {
	checksFile string
	htmlFile   string
	url        string
	fetcher    *source.Fetcher

	// announce receives "url <url>" before the fetch starts.
	announce io.Writer
}

// NewFileLoadStep creates a step that grades the local file htmlFile.
func NewFileLoadStep(checksFile, htmlFile string) *LoadStep {
	return &LoadStep{checksFile: checksFile, htmlFile: htmlFile}
}

// NewURLLoadStep creates a step that fetches rawURL with fetcher.
func NewURLLoadStep(checksFile, rawURL string, fetcher *source.Fetcher, announce io.Writer) *LoadStep {
	if announce == nil {
		announce = io.Discard
	}
	return &LoadStep{
		checksFile: checksFile,
		url:        rawURL,
		fetcher:    fetcher,
		announce:   announce,
	}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do loads the selector list and the document into state.
func (s *LoadStep) Do(ctx context.Context, state *State) error {
	switch {
	case s.htmlFile != "":
		list, err := checks.Load(s.checksFile)
		if err != nil {
			return err
		}
		doc, err := source.ReadFile(s.htmlFile)
		if err != nil {
			return err
		}
		state.Checks, state.Document = list, doc
		return nil

	case s.url != "":
		if s.fetcher == nil {
			return fmt.Errorf("%w: no fetcher for %s", ErrNoSource, s.url)
		}
		fmt.Fprintf(s.announce, "url %s\n", s.url)

		var (
			list checks.List
			doc  *source.Document
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			list, err = checks.Load(s.checksFile)
			return err
		})
		g.Go(func() error {
			var err error
			doc, err = s.fetcher.Fetch(gctx, s.url)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		state.Checks, state.Document = list, doc
		return nil

	default:
		return ErrNoSource
	}
}

// ParseStep builds the DOM from the loaded document.
type ParseStep struct {
	// encoding forces a character encoding label; empty means detect.
	encoding string
}

// NewParseStep creates a parse step.
func NewParseStep(encoding string) *ParseStep {
	return &ParseStep{encoding: encoding}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return "parse"
}

// Do parses state.Document into state.Parsed.
func (s *ParseStep) Do(_ context.Context, state *State) error {
	if state.Document == nil {
		return fmt.Errorf("%w: nothing to parse", ErrNoSource)
	}
	parsed, err := state.Document.Parse(s.encoding)
	if err != nil {
		return err
	}
	state.Parsed = parsed
	return nil
}

// GradeStep evaluates the selectors against the parsed document.
type GradeStep struct {
	grader *grader.Grader
}

// NewGradeStep creates a grade step.
func NewGradeStep(g *grader.Grader) *GradeStep {
	if g == nil {
		g = grader.New()
	}
	return &GradeStep{grader: g}
}

// Name returns the step name.
func (s *GradeStep) Name() string {
	return "grade"
}

// Do fills state.Report and state.Run.
func (s *GradeStep) Do(_ context.Context, state *State) error {
	if state.Parsed == nil || state.Document == nil {
		return fmt.Errorf("%w: document not parsed", ErrNoSource)
	}
	result, err := s.grader.Grade(state.Parsed, state.Checks)
	if err != nil {
		return err
	}
	state.Report = result
	state.Run = model.NewRun(state.Document.Kind, state.Document.Location, state.Document.Hash, result)
	return nil
}

// ReportStep writes the run in the chosen format to stdout or a file.
// The file is only created once there is a report to write.
type ReportStep struct {
	format report.Format
	opts   report.Options
	stdout io.Writer
	path   string
}

// NewReportStep creates a report step. An empty path writes to stdout.
func NewReportStep(format report.Format, stdout io.Writer, path string, opts report.Options) *ReportStep {
	return &ReportStep{format: format, opts: opts, stdout: stdout, path: path}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do writes state.Run.
func (s *ReportStep) Do(_ context.Context, state *State) (err error) {
	if state.Run == nil {
		return fmt.Errorf("%w: nothing to report", ErrNoSource)
	}

	output := s.stdout
	if s.path != "" {
		var f *os.File
		f, err = CreateReportFile(s.path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		output = f
	}

	w, err := report.NewWithOptions(s.format, output, s.opts)
	if err != nil {
		return err
	}
	_, err = w.Write(state.Run)
	return err
}

// CreateReportFile creates path and its parent directories. Reports may
// carry private URLs, so the file is only readable by the owner.
func CreateReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // path comes from --output
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// SaveStep records the run in the history database.
type SaveStep struct {
	dbDir  string
	logger *slog.Logger
}

// NewSaveStep creates a save step writing to the database in dbDir.
func NewSaveStep(dbDir string, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{dbDir: dbDir, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do saves state.Run and sets its ID. File locations are stored as
// absolute paths so that history lookups work from any directory.
func (s *SaveStep) Do(ctx context.Context, state *State) error {
	if state.Run == nil {
		return fmt.Errorf("%w: nothing to save", ErrNoSource)
	}

	db, err := database.Open(s.dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	stored := *state.Run
	if stored.Kind == model.SourceFile {
		if abs, err := filepath.Abs(stored.Location); err == nil {
			stored.Location = abs
		}
	}

	id, err := db.SaveRun(ctx, &stored)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	state.Run.ID = id

	s.logger.Debug("run saved to history", "id", id, "location", stored.Location)
	return nil
}
