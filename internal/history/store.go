// Package history records every optimize/render run in a local SQLite
// database so past outputs can be listed and traced back to their inputs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// timeLayout sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one pipeline execution.
type Run struct {
	ID          string
	URL         string
	Keywords    []string
	Format      string
	OutputPath  string
	Status      string
	Error       string
	Blocks      int
	Highlighted int
	Markers     int
	Duration    time.Duration
	CreatedAt   time.Time
}

// ListParams filters List.
type ListParams struct {
	Limit int
	URL   string
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		url          TEXT NOT NULL,
		keywords     TEXT NOT NULL DEFAULT '[]',
		format       TEXT NOT NULL,
		output_path  TEXT,
		status       TEXT NOT NULL,
		error        TEXT,
		blocks       INTEGER NOT NULL DEFAULT 0,
		highlighted  INTEGER NOT NULL DEFAULT 0,
		markers      INTEGER NOT NULL DEFAULT 0,
		duration_ms  INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_url ON runs(url);
	`)
	return err
}

// NewID returns a fresh ULID.
func (s *Store) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// Record inserts run, filling ID, Status and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = s.NewID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = StatusOK
	}
	keywords, err := json.Marshal(nonNil(run.Keywords))
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, url, keywords, format, output_path, status, error,
		                  blocks, highlighted, markers, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.URL, string(keywords), run.Format, nullString(run.OutputPath),
		run.Status, nullString(run.Error), run.Blocks, run.Highlighted, run.Markers,
		run.Duration.Milliseconds(), run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns runs newest first. Limit defaults to 20.
func (s *Store) List(ctx context.Context, p ListParams) ([]Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []any
	if p.URL != "" {
		where = append(where, "url = ?")
		args = append(args, p.URL)
	}
	query := `SELECT id, url, keywords, format, output_path, status, error,
	                 blocks, highlighted, markers, duration_ms, created_at
	          FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var keywords, createdAt string
	var outputPath, errText sql.NullString
	var durationMS int64

	err := row.Scan(
		&r.ID, &r.URL, &keywords, &r.Format, &outputPath, &r.Status, &errText,
		&r.Blocks, &r.Highlighted, &r.Markers, &durationMS, &createdAt,
	)
	if err != nil {
		return r, fmt.Errorf("scan run: %w", err)
	}

	if err := json.Unmarshal([]byte(keywords), &r.Keywords); err != nil {
		return r, fmt.Errorf("decode keywords for %s: %w", r.ID, err)
	}
	r.OutputPath = outputPath.String
	r.Error = errText.String
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
