package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/consolestrip/internal/config"
	"github.com/wizzomafizzo/consolestrip/internal/logging"
	"github.com/wizzomafizzo/consolestrip/internal/prompt"
	"github.com/wizzomafizzo/consolestrip/internal/storage"
)

// environment holds the process-level dependencies of the commands so tests
// can run them against an in-memory filesystem.
type environment struct {
	fs          afero.Fs
	logWriter   io.Writer
	newPrompter func() prompt.Prompter
	historyPath func() (string, error)
	lockPath    func(root string) (string, error)
	terminal    bool
}

func defaultEnvironment() *environment {
	osFs := afero.NewOsFs()
	paths := storage.New(osFs)
	return &environment{
		fs:          osFs,
		newPrompter: prompt.NewLinerPrompter,
		historyPath: paths.GetHistoryPath,
		lockPath:    paths.GetLockPath,
		terminal:    isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

// loadConfig reads the config named by --config. The default path may be
// absent; an explicitly given one must exist.
func (env *environment) loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get config flag: %w", err)
	}

	allowMissing := !cmd.Flags().Changed("config")
	cfg, err := config.Load(env.fs, configPath, allowMissing)
	if err != nil {
		return nil, configPath, err
	}
	return cfg, configPath, nil
}

// withLogger attaches the run logger. --log-level wins over the config file.
func (env *environment) withLogger(ctx context.Context, cmd *cobra.Command, cfg *config.Config, runID string) (context.Context, error) {
	levelName := cfg.Logging.Level
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		levelName = flagLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	return logging.New(ctx, env.fs, logging.Config{
		Writer:     env.logWriter,
		RunID:      runID,
		Level:      level,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})
}

func (env *environment) colorEnabled(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return env.terminal
}
