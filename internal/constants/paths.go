// Package constants contains names shared across consolestrip packages.
package constants

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "consolestrip"

	// ConfigFilename is the config file name inside the XDG config directory.
	ConfigFilename = "config.yml"

	// LogFilename is the default log file name for consolestrip.
	LogFilename = "consolestrip.log"

	// HistoryFilename is the run history database file name.
	HistoryFilename = "history.db"

	// LockSuffix is appended to the fingerprint of a target root to name its run lock.
	LockSuffix = ".lock"

	// TempPattern is the pattern used for temporary files during atomic rewrites.
	TempPattern = ".consolestrip-*"
)
