// Package filesystem provides scoped reads and atomic rewrites over afero.Fs.
package filesystem

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/consolestrip/internal/constants"
)

// ReadFile opens name, reads it to completion and closes it on every path.
func ReadFile(fs afero.Fs, name string) (data []byte, err error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", name, cerr)
		}
	}()

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// WriteFileAtomic replaces the content of an existing file. Data is written to
// a temporary file in the same directory which is then renamed over name, so
// readers never see a partial write. The original permissions are kept.
func WriteFileAtomic(fs afero.Fs, name string, data []byte) error {
	info, err := fs.Stat(name)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(name), constants.TempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Ensure temp file is cleaned up on error
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := fs.Rename(tmpPath, name); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", name, err)
	}

	committed = true
	return nil
}
