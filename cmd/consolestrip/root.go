package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/consolestrip/internal/filelock"
	"github.com/wizzomafizzo/consolestrip/internal/history"
	"github.com/wizzomafizzo/consolestrip/internal/logging"
	"github.com/wizzomafizzo/consolestrip/internal/prompt"
	"github.com/wizzomafizzo/consolestrip/internal/report"
	"github.com/wizzomafizzo/consolestrip/internal/storage"
	"github.com/wizzomafizzo/consolestrip/internal/strip"
)

// Exit codes beyond the generic failure.
const exitDirectoryNotFound = 2

// ExitError carries a specific process exit code
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

type runFlags struct {
	excludes  []string
	dryRun    bool
	confirm   bool
	jsonOut   bool
	quiet     bool
	noHistory bool
}

// createNewRootCommand creates the root command, which runs a strip over a directory.
func createNewRootCommand() *cobra.Command {
	return newRootCommand(defaultEnvironment())
}

func newRootCommand(env *environment) *cobra.Command {
	var flags runFlags

	rootCmd := &cobra.Command{
		Use:   "consolestrip [directory]",
		Short: "Remove console output lines from source files",
		Long: `Recursively scans a directory and deletes lines that start with a
console output call such as Console.WriteLine. Files are rewritten in place
unless --dry-run is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runStrip(cmd, env, root, flags)
		},
	}

	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be removed without writing files")
	rootCmd.Flags().BoolVar(&flags.confirm, "confirm", false, "Ask before rewriting each file")
	rootCmd.Flags().StringArrayVar(&flags.excludes, "exclude", nil, "Glob of paths to skip (repeatable)")
	rootCmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print a JSON report instead of text")
	rootCmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print each removed line")
	rootCmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in the history database")
	rootCmd.MarkFlagsMutuallyExclusive("dry-run", "confirm")

	rootCmd.PersistentFlags().StringP("config", "c", storage.ConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		createConfigCommand(),
		createHistoryCommand(env),
		createRulesCommand(env),
		createValidateCommand(env),
	)

	return rootCmd
}

func runStrip(cmd *cobra.Command, env *environment, root string, flags runFlags) error {
	cfg, _, err := env.loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(flags.excludes) > 0 {
		cfg.Exclude = append(cfg.Exclude, flags.excludes...)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --exclude: %w", err)
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	if err := strip.CheckRoot(env.fs, absRoot); err != nil {
		if errors.Is(err, strip.ErrDirectoryNotFound) {
			return &ExitError{Code: exitDirectoryNotFound, Err: err}
		}
		return err
	}

	runID := uuid.NewString()
	ctx, err := env.withLogger(cmd.Context(), cmd, cfg, runID)
	if err != nil {
		return err
	}

	opts := strip.Options{DryRun: flags.dryRun}
	if flags.confirm {
		if !env.terminal {
			return errors.New("--confirm requires an interactive terminal")
		}
		prompter := env.newPrompter()
		defer func() { _ = prompter.Close() }()
		opts.Confirm = prompt.FileConfirmer(prompter, cmd.OutOrStdout())
	}

	if !flags.dryRun {
		unlock, err := acquireRunLock(env, absRoot)
		if err != nil {
			return err
		}
		defer unlock()
	}

	var store *history.Store
	if !flags.noHistory {
		store, err = openHistory(ctx, env)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	var reporter strip.Reporter
	if flags.jsonOut {
		reporter = report.NewJSON(cmd.OutOrStdout())
	} else {
		reporter = report.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), report.ConsoleOptions{
			Color: env.colorEnabled(cmd),
			Quiet: flags.quiet,
		})
	}

	engine, err := strip.New(env.fs, cfg, reporter, opts)
	if err != nil {
		return err
	}

	result, runErr := engine.Run(ctx, absRoot)
	if errors.Is(runErr, strip.ErrDirectoryNotFound) {
		return &ExitError{Code: exitDirectoryNotFound, Err: runErr}
	}

	if store != nil && result != nil {
		run, files := history.FromResult(runID, result)
		if err := store.Record(ctx, run, files); err != nil {
			// files are already rewritten at this point
			logging.Get(ctx).Error().Err(err).Msg("failed to record run")
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: run not recorded: %v\n", err)
		}
	}

	return runErr
}

func acquireRunLock(env *environment, absRoot string) (func(), error) {
	lockPath, err := env.lockPath(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to get lock path: %w", err)
	}

	lock := filelock.New(lockPath)
	if err := lock.TryLock(); err != nil {
		if errors.Is(err, filelock.ErrLocked) {
			return nil, fmt.Errorf("another run is already processing %s: %w", absRoot, err)
		}
		return nil, err
	}
	return func() { _ = lock.Unlock() }, nil
}

func openHistory(ctx context.Context, env *environment) (*history.Store, error) {
	path, err := env.historyPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get history path: %w", err)
	}
	store, err := history.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}
