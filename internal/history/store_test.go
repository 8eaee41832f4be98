package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wizzomafizzo/consolestrip/internal/strip"
)

func openStore(t *testing.T) (context.Context, *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return ctx, store
}

func sampleResult(start time.Time) *strip.RunResult {
	return &strip.RunResult{
		Root:       "/proj",
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Summary:    strip.Summary{Scanned: 3, Modified: 1, Removed: 2, ReadFailures: 1},
		Files: []strip.FileOutcome{
			{Path: "/proj/a.cs", Status: strip.StatusModified, Encoding: "utf-8", Removed: 2, BeforeHash: "aa", AfterHash: "bb"},
			{Path: "/proj/b.cs", Status: strip.StatusUnchanged, Encoding: "utf-8"},
			{Path: "/proj/c.cs", Status: strip.StatusDecodeFailed, Error: "content cannot be decoded"},
		},
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	t.Parallel()
	ctx, store := openStore(t)

	var version int
	require.NoError(t, store.DB().QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)

	var name string
	err := store.DB().QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "runs", name)
}

func TestReopenFileDatabase(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dsn := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(ctx, dsn)
	require.NoError(t, err)

	run, files := FromResult("run-1", sampleResult(time.Now()))
	require.NoError(t, store.Record(ctx, run, files))
	require.NoError(t, store.Close())

	store, err = Open(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	var journalMode string
	require.NoError(t, store.DB().QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}

func TestFromResultDropsUnchangedFiles(t *testing.T) {
	t.Parallel()

	run, files := FromResult("run-1", sampleResult(time.Now()))

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "/proj", run.Root)
	require.Len(t, files, 2)
	assert.Equal(t, "/proj/a.cs", files[0].Path)
	assert.Equal(t, "/proj/c.cs", files[1].Path)
}

func TestRecordAndGet(t *testing.T) {
	t.Parallel()
	ctx, store := openStore(t)

	start := time.UnixMilli(time.Now().UnixMilli())
	run, files := FromResult("0f8e2c1a-0000-4000-8000-000000000001", sampleResult(start))
	require.NoError(t, store.Record(ctx, run, files))

	got, gotFiles, err := store.Get(ctx, "0f8e2c1a")
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Summary, got.Summary)
	assert.True(t, start.Equal(got.StartedAt))
	assert.True(t, start.Add(time.Second).Equal(got.FinishedAt))
	assert.Equal(t, files, gotFiles)
}

func TestGetNotFoundAndAmbiguous(t *testing.T) {
	t.Parallel()
	ctx, store := openStore(t)

	now := time.Now()
	for _, id := range []string{"abc-1", "abc-2"} {
		run, files := FromResult(id, sampleResult(now))
		require.NoError(t, store.Record(ctx, run, files))
	}

	_, _, err := store.Get(ctx, "zzz")
	require.ErrorIs(t, err, ErrRunNotFound)

	_, _, err = store.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrAmbiguousRun)

	got, _, err := store.Get(ctx, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", got.ID)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	ctx, store := openStore(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"first", "second", "third"} {
		result := sampleResult(base.Add(time.Duration(i) * time.Minute))
		result.Summary.DryRun = i == 1
		run, files := FromResult(id, result)
		require.NoError(t, store.Record(ctx, run, files))
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].ID)
	assert.Equal(t, "second", runs[1].ID)
	assert.True(t, runs[1].Summary.DryRun)
	assert.False(t, runs[0].Summary.DryRun)
}

func TestRecordDuplicateIDRollsBack(t *testing.T) {
	t.Parallel()
	ctx, store := openStore(t)

	run, files := FromResult("dup", sampleResult(time.Now()))
	require.NoError(t, store.Record(ctx, run, files))
	require.Error(t, store.Record(ctx, run, files))

	_, gotFiles, err := store.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, gotFiles, 2)
}
