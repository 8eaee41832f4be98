// Package logging attaches a zerolog logger to a context. Production logs go to
// a rotated file in the XDG state directory; tests pass their own writer.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/wizzomafizzo/consolestrip/internal/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogSizeMB  = 10
	defaultLogBackups = 3
	defaultLogAgeDays = 30
)

// Log levels - aliases for zerolog levels
const (
	ErrorLevel = zerolog.ErrorLevel
	WarnLevel  = zerolog.WarnLevel
	InfoLevel  = zerolog.InfoLevel
	DebugLevel = zerolog.DebugLevel
)

// Config defines the configuration for logger creation
type Config struct {
	Writer     io.Writer
	RunID      string
	Level      zerolog.Level
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// New creates a new context with a logger attached
// For production: provide fs and leave Writer nil for file logging
// For tests: provide a custom Writer (like strings.Builder) for in-memory logging
func New(ctx context.Context, fs afero.Fs, config Config) (context.Context, error) {
	var writer io.Writer

	if config.Writer != nil {
		writer = config.Writer
	} else {
		if fs == nil {
			return nil, errors.New("filesystem required when no writer provided")
		}

		logFile, err := storage.New(fs).GetLogPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get log path: %w", err)
		}

		writer = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    orDefault(config.MaxSize, defaultLogSizeMB),
			MaxBackups: orDefault(config.MaxBackups, defaultLogBackups),
			MaxAge:     orDefault(config.MaxAge, defaultLogAgeDays),
		}
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Str("run_id", config.RunID).
		Logger().
		Level(config.Level)

	return logger.WithContext(ctx), nil
}

// Get retrieves the logger from the provided context
// Returns the logger associated with the context, or a disabled logger if none exists
func Get(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// ParseLevel converts a level name from config or flags to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
