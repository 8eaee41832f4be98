package history

import (
	"context"
	"fmt"
)

type migration struct {
	sql     string
	version int
}

var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE runs (
				id TEXT PRIMARY KEY,
				root TEXT NOT NULL,
				dry_run INTEGER NOT NULL,
				started_at INTEGER NOT NULL,
				finished_at INTEGER NOT NULL,
				scanned INTEGER NOT NULL,
				modified INTEGER NOT NULL,
				removed INTEGER NOT NULL,
				read_failures INTEGER NOT NULL,
				write_failures INTEGER NOT NULL,
				declined INTEGER NOT NULL DEFAULT 0
			);

			CREATE TABLE files (
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				path TEXT NOT NULL,
				status TEXT NOT NULL,
				encoding TEXT NOT NULL DEFAULT '',
				removed INTEGER NOT NULL,
				before_hash TEXT NOT NULL DEFAULT '',
				after_hash TEXT NOT NULL DEFAULT '',
				error TEXT NOT NULL DEFAULT ''
			);

			CREATE INDEX idx_runs_started ON runs(started_at);
			CREATE INDEX idx_files_run ON files(run_id);
		`,
	},
}

func (s *Store) runMigrations(ctx context.Context) error {
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current database version: %w", err)
	}

	for _, migration := range migrations {
		if migration.version <= currentVersion {
			continue
		}
		if err := s.executeMigration(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) executeMigration(ctx context.Context, migration migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, migration.sql); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", migration.version, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", migration.version)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update database version to %d: %w", migration.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.version, err)
	}
	return nil
}
