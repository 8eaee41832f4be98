// Package storage provides XDG-compliant storage path management for consolestrip.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"github.com/wizzomafizzo/consolestrip/internal/constants"
)

// Manager handles storage operations with filesystem abstraction
type Manager struct {
	fs afero.Fs
}

// New creates a new storage manager with the given filesystem
func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// ConfigPath returns the default config file location. The directory is not created.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, constants.AppName, constants.ConfigFilename)
}

// GetDataDir returns the XDG data directory for consolestrip, creating it if necessary
func (m *Manager) GetDataDir() (string, error) {
	return m.ensureDir(filepath.Join(xdg.DataHome, constants.AppName))
}

// GetStateDir returns the XDG state directory for consolestrip, creating it if necessary
func (m *Manager) GetStateDir() (string, error) {
	return m.ensureDir(filepath.Join(xdg.StateHome, constants.AppName))
}

// GetLogPath returns the full path to the consolestrip log file
func (m *Manager) GetLogPath() (string, error) {
	stateDir, err := m.GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, constants.LogFilename), nil
}

// GetHistoryPath returns the full path to the run history database
func (m *Manager) GetHistoryPath() (string, error) {
	dataDir, err := m.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, constants.HistoryFilename), nil
}

// GetLockPath returns the run lock file for the given absolute target root
func (m *Manager) GetLockPath(root string) (string, error) {
	stateDir, err := m.GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, Fingerprint([]byte(root))+constants.LockSuffix), nil
}

func (m *Manager) ensureDir(dir string) (string, error) {
	if err := m.fs.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

// Fingerprint returns the xxhash of data as 16 lowercase hex digits.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
