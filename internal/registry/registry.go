package registry

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/thamos/internal/logging"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

// DatabaseFile is the name of the history database under the storage root.
const DatabaseFile = "history.db"

var ErrAnalysisNotFound = errors.New("analysis not found")

// Analysis is one submitted analysis as remembered locally.
type Analysis struct {
	ID          string
	AnalysisID  string
	Kind        string
	Host        string
	SubmittedAt time.Time

	// FinishedAt is zero until the client saw the analysis finish.
	FinishedAt time.Time
	Outcome    string
}

// Registry keeps the history of submitted analyses in SQLite so that commands
// such as "log" and "status" can default to the most recent analysis.
type Registry struct {
	db     *sql.DB
	host   string
	logger logging.Logger
}

// NewRegistry returns a Registry and runs migrations from schema.sql.
func NewRegistry(db *sql.DB, logger logging.Logger) (*Registry, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Registry{db: db, logger: logger.With(logging.Field{Key: "component", Value: "registry"})}, nil
}

// Open opens (creating if needed) the history database under rootDir.
func Open(rootDir string, logger logging.Logger) (*Registry, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("rootDir is required")
	}
	rootDir = filepath.Clean(rootDir)
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure rootDir %s: %w", rootDir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(rootDir, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure history database: %w", err)
	}

	reg, err := NewRegistry(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return reg, nil
}

// ForHost returns a Registry sharing the same database that tags new records with host.
func (r *Registry) ForHost(host string) *Registry {
	cp := *r
	cp.host = host
	return &cp
}

// RecordSubmission stores a freshly submitted analysis. Submitting the same
// analysis id again refreshes its submission time.
func (r *Registry) RecordSubmission(ctx context.Context, analysisID, kind string) error {
	if analysisID == "" {
		return fmt.Errorf("analysis id is required")
	}
	now := time.Now().UnixNano()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analyses (id, analysis_id, kind, host, submitted_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(analysis_id) DO UPDATE SET
             submitted_at = excluded.submitted_at,
             finished_at = NULL,
             outcome = ''`,
		uuid.New().String(), analysisID, kind, r.host, now,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	r.logger.Debug("recorded analysis",
		logging.Field{Key: "analysis_id", Value: analysisID},
		logging.Field{Key: "kind", Value: kind})
	return nil
}

// MarkFinished records the outcome of a finished analysis.
func (r *Registry) MarkFinished(ctx context.Context, analysisID, outcome string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE analyses SET finished_at = ?, outcome = ? WHERE analysis_id = ?`,
		time.Now().UnixNano(), outcome, analysisID,
	)
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
	}
	return nil
}

const selectAnalysis = `SELECT id, analysis_id, kind, host, submitted_at, finished_at, outcome FROM analyses`

// Get returns the record of analysisID.
func (r *Registry) Get(ctx context.Context, analysisID string) (*Analysis, error) {
	row := r.db.QueryRowContext(ctx, selectAnalysis+` WHERE analysis_id = ? LIMIT 1`, analysisID)
	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
		}
		return nil, err
	}
	return a, nil
}

// Last returns the most recently submitted analysis, optionally restricted to kind.
func (r *Registry) Last(ctx context.Context, kind string) (*Analysis, error) {
	query := selectAnalysis + ` ORDER BY submitted_at DESC, rowid DESC LIMIT 1`
	args := []any{}
	if kind != "" {
		query = selectAnalysis + ` WHERE kind = ? ORDER BY submitted_at DESC, rowid DESC LIMIT 1`
		args = append(args, kind)
	}

	a, err := scanAnalysis(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns up to limit analyses, newest first. A non-positive limit lists all.
func (r *Registry) List(ctx context.Context, limit int) ([]Analysis, error) {
	query := selectAnalysis + ` ORDER BY submitted_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*Analysis, error) {
	var a Analysis
	var submitted int64
	var finished sql.NullInt64
	if err := s.Scan(&a.ID, &a.AnalysisID, &a.Kind, &a.Host, &submitted, &finished, &a.Outcome); err != nil {
		return nil, err
	}
	a.SubmittedAt = time.Unix(0, submitted)
	if finished.Valid {
		a.FinishedAt = time.Unix(0, finished.Int64)
	}
	return &a, nil
}
