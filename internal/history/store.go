// Package history records strip runs in a SQLite ledger so earlier rewrites can
// be inspected later.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wizzomafizzo/consolestrip/internal/strip"
	_ "modernc.org/sqlite"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// Run is one recorded invocation.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Root       string
	Summary    strip.Summary
}

// FileRecord is one file touched (or attempted) by a run.
type FileRecord struct {
	Path       string
	Status     strip.Status
	Encoding   string
	BeforeHash string
	AfterHash  string
	Error      string
	Removed    int
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a single connection keeps ":memory:" databases consistent and a run is sequential anyway
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	store := &Store{db: db}
	if err := store.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

// FromResult converts an engine result into a ledger entry. Unchanged files are
// not kept.
func FromResult(id string, result *strip.RunResult) (Run, []FileRecord) {
	run := Run{
		ID:         id,
		Root:       result.Root,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Summary:    result.Summary,
	}

	var files []FileRecord
	for _, f := range result.Files {
		if f.Status == strip.StatusUnchanged {
			continue
		}
		files = append(files, FileRecord{
			Path:       f.Path,
			Status:     f.Status,
			Encoding:   f.Encoding,
			BeforeHash: f.BeforeHash,
			AfterHash:  f.AfterHash,
			Error:      f.Error,
			Removed:    f.Removed,
		})
	}
	return run, files
}

// Record stores a run and its file records in one transaction.
func (s *Store) Record(ctx context.Context, run Run, files []FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, root, dry_run, started_at, finished_at,
			scanned, modified, removed, read_failures, write_failures, declined
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.Summary.DryRun,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Summary.Scanned, run.Summary.Modified, run.Summary.Removed,
		run.Summary.ReadFailures, run.Summary.WriteFailures, run.Summary.Declined,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	for _, f := range files {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO files (run_id, path, status, encoding, removed, before_hash, after_hash, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, f.Path, string(f.Status), f.Encoding, f.Removed, f.BeforeHash, f.AfterHash, f.Error,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

const runColumns = `id, root, dry_run, started_at, finished_at,
	scanned, modified, removed, read_failures, write_failures, declined`

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// Get returns the run whose id equals or starts with idPrefix, with its files.
func (s *Store) Get(ctx context.Context, idPrefix string) (Run, []FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? || '%' ORDER BY id = ? DESC LIMIT 2`,
		idPrefix, idPrefix, idPrefix)
	if err != nil {
		return Run{}, nil, fmt.Errorf("failed to query run: %w", err)
	}

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return Run{}, nil, err
		}
		matches = append(matches, run)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("failed to read run: %w", err)
	}

	switch {
	case len(matches) == 0:
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, idPrefix)
	case len(matches) > 1 && matches[0].ID != idPrefix:
		return Run{}, nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, idPrefix)
	}

	run := matches[0]
	files, err := s.files(ctx, run.ID)
	if err != nil {
		return Run{}, nil, err
	}
	return run, files, nil
}

func (s *Store) files(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, status, encoding, removed, before_hash, after_hash, error
		FROM files WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var status string
		if err := rows.Scan(&f.Path, &status, &f.Encoding, &f.Removed, &f.BeforeHash, &f.AfterHash, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.Status = strip.Status(status)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read files: %w", err)
	}
	return files, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var started, finished int64
	err := row.Scan(
		&run.ID, &run.Root, &run.Summary.DryRun, &started, &finished,
		&run.Summary.Scanned, &run.Summary.Modified, &run.Summary.Removed,
		&run.Summary.ReadFailures, &run.Summary.WriteFailures, &run.Summary.Declined,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = time.UnixMilli(started)
	run.FinishedAt = time.UnixMilli(finished)
	return run, nil
}
