// Package filelock guards a target tree against concurrent in-place runs.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another run holds the lock")

// FileLock wraps a flock file lock for coordinating access to a target tree.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// New creates a new file lock for the given path. The lock file is created on
// acquisition.
func New(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// TryLock acquires the lock without blocking, returning ErrLocked when it is
// held elsewhere.
func (fl *FileLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(fl.path), 0o750); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := fl.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrLocked, fl.path)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}
