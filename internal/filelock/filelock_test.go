package filelock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLockAndUnlock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "root.lock")
	lock := New(path)
	assert.Equal(t, path, lock.Path())

	require.NoError(t, lock.TryLock())
	assert.FileExists(t, path)
	require.NoError(t, lock.Unlock())
}

func TestTryLockContention(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "root.lock")
	first := New(path)
	second := New(path)

	require.NoError(t, first.TryLock())

	err := second.TryLock()
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Unlock())
	require.NoError(t, second.TryLock())
	require.NoError(t, second.Unlock())
}
