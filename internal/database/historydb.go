package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/htmlgrader/internal/model"
)

// FileName is the database file inside the data directory.
const FileName = "htmlgrader.db"

// storedTimeLayout is fixed-width so that text comparison orders by time.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB stores grading runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		location TEXT NOT NULL,
		document_hash TEXT NOT NULL DEFAULT '',
		checked_at TEXT NOT NULL,
		present_count INTEGER NOT NULL,
		total_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_location ON runs(location);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun inserts run and sets its ID.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	report := run.Report
	if report == nil {
		report = model.NewReport(0)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO runs (kind, location, document_hash, checked_at, present_count, total_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		string(run.Kind),
		run.Location,
		run.DocumentHash,
		run.CheckedAt.UTC().Format(storedTimeLayout),
		report.PresentCount(),
		report.Len(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	run.ID = id
	return id, nil
}

// SourceSummary describes one graded file or URL.
type SourceSummary struct {
	Kind        model.SourceKind
	Location    string
	Runs        int
	LastChecked time.Time
}

// ListSources returns every location with at least one run, sorted by location.
func (h *HistoryDB) ListSources(ctx context.Context) ([]SourceSummary, error) {
	query := `
	SELECT kind, location, COUNT(*), MAX(checked_at) FROM runs
	GROUP BY kind, location
	ORDER BY location
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceSummary
	for rows.Next() {
		var (
			s         SourceSummary
			kind      string
			timestamp string
		)
		if err := rows.Scan(&kind, &s.Location, &s.Runs, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		s.Kind = model.SourceKind(kind)
		s.LastChecked = parseTimestamp(timestamp)
		sources = append(sources, s)
	}

	return sources, rows.Err()
}

// ListRuns returns the runs of location, newest first. limit <= 0 means all.
func (h *HistoryDB) ListRuns(ctx context.Context, location string, limit int) ([]*model.Run, error) {
	query := `
	SELECT id, kind, location, document_hash, checked_at, report_json FROM runs
	WHERE location = ?
	ORDER BY id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := h.db.QueryContext(ctx, query, location, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// LatestRuns returns the last two runs of location, oldest first, ready to
// be passed to model.NewDiff. Fewer are returned when fewer exist.
func (h *HistoryDB) LatestRuns(ctx context.Context, location string) ([]*model.Run, error) {
	runs, err := h.ListRuns(ctx, location, 2)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

// GetRun returns the run with the given ID.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	query := `
	SELECT id, kind, location, document_hash, checked_at, report_json FROM runs
	WHERE id = ?
	`

	run, err := scanRun(h.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return run, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run        model.Run
		kind       string
		timestamp  string
		reportJSON string
	)
	if err := row.Scan(&run.ID, &kind, &run.Location, &run.DocumentHash, &timestamp, &reportJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Kind = model.SourceKind(kind)
	run.CheckedAt = parseTimestamp(timestamp)
	run.Report = model.NewReport(0)
	if err := json.Unmarshal([]byte(reportJSON), run.Report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &run, nil
}

// timestampFormats are tried in order by parseTimestamp.
var timestampFormats = []string{
	storedTimeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
