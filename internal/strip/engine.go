// Package strip drives a run: it walks the target tree and, for every eligible
// file, reads it, filters console-output lines and conditionally rewrites it.
//
// Files are processed one at a time. Per-file failures are reported and
// counted but never abort the run.
package strip

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/consolestrip/internal/config"
	"github.com/wizzomafizzo/consolestrip/internal/filesystem"
	"github.com/wizzomafizzo/consolestrip/internal/filter"
	"github.com/wizzomafizzo/consolestrip/internal/logging"
	"github.com/wizzomafizzo/consolestrip/internal/storage"
	"github.com/wizzomafizzo/consolestrip/internal/textcodec"
	"github.com/wizzomafizzo/consolestrip/internal/walker"
)

// ErrDirectoryNotFound is returned by Run when the target is missing or not a directory.
var ErrDirectoryNotFound = errors.New("directory does not exist")

// Options controls a run.
type Options struct {
	Confirm   ConfirmFunc
	WriteBack string
	DryRun    bool
}

// Engine processes files with a fixed rule set and encoding chain.
type Engine struct {
	fs         afero.Fs
	reporter   Reporter
	classifier *walker.Classifier
	codecs     textcodec.Chain
	rules      filter.RuleSet
	opts       Options
}

// New creates an engine from a validated config. A nil reporter discards output.
func New(fs afero.Fs, cfg *config.Config, reporter Reporter, opts Options) (*Engine, error) {
	rules, err := cfg.RuleSet()
	if err != nil {
		return nil, err
	}
	codecs, err := cfg.Codecs()
	if err != nil {
		return nil, err
	}

	if opts.WriteBack == "" {
		opts.WriteBack = cfg.Encoding.WriteBack
	}
	switch opts.WriteBack {
	case config.WriteBackSource, config.WriteBackPrimary:
	default:
		return nil, fmt.Errorf("invalid write-back policy %q", opts.WriteBack)
	}

	if reporter == nil {
		reporter = nopReporter{}
	}

	return &Engine{
		fs:         fs,
		reporter:   reporter,
		classifier: walker.NewClassifier(cfg.Extensions, cfg.Exclude),
		codecs:     codecs,
		rules:      rules,
		opts:       opts,
	}, nil
}

// CheckRoot returns ErrDirectoryNotFound unless root is an existing directory on fs.
func CheckRoot(fs afero.Fs, root string) error {
	info, err := fs.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
		}
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, root)
	}
	return nil
}

// Run processes every eligible file under root and returns the accumulated
// result. A missing root is reported as ErrDirectoryNotFound before any
// traversal happens. A failing confirmation stops the walk; the partial result
// is returned with the error.
func (e *Engine) Run(ctx context.Context, root string) (*RunResult, error) {
	if err := CheckRoot(e.fs, root); err != nil {
		return nil, err
	}

	logger := logging.Get(ctx)
	logger.Info().Str("root", root).Bool("dry_run", e.opts.DryRun).Msg("run started")

	result := &RunResult{
		Root:      root,
		StartedAt: time.Now(),
		Summary:   Summary{DryRun: e.opts.DryRun},
	}
	e.reporter.Start(root, e.opts.DryRun)

	err := walker.Walk(ctx, e.fs, root, e.classifier, func(path string) error {
		outcome := e.ProcessFile(ctx, path)
		result.Files = append(result.Files, outcome)
		result.Summary = result.Summary.Add(outcome)
		e.reporter.FileDone(outcome)
		if outcome.Status == StatusDeclined && outcome.Err != nil {
			return outcome.Err
		}
		return nil
	})
	result.FinishedAt = time.Now()
	if err != nil {
		return result, fmt.Errorf("run interrupted: %w", err)
	}

	e.reporter.Finish(result.Summary)
	logger.Info().
		Int("scanned", result.Summary.Scanned).
		Int("modified", result.Summary.Modified).
		Int("removed", result.Summary.Removed).
		Int("read_failures", result.Summary.ReadFailures).
		Int("write_failures", result.Summary.WriteFailures).
		Dur("elapsed", result.FinishedAt.Sub(result.StartedAt)).
		Msg("run finished")

	return result, nil
}

// ProcessFile reads, filters and conditionally rewrites one file. A failing
// confirmation leaves the file untouched and is returned in the outcome's Err.
func (e *Engine) ProcessFile(ctx context.Context, path string) FileOutcome {
	logger := logging.Get(ctx).With().Str("path", path).Logger()
	outcome := FileOutcome{Path: path, Status: StatusUnchanged}

	data, err := filesystem.ReadFile(e.fs, path)
	if err != nil {
		return e.fail(ctx, outcome, StatusReadFailed, err)
	}
	outcome.BeforeHash = storage.Fingerprint(data)

	text, codec, err := e.codecs.Decode(data)
	if err != nil {
		return e.fail(ctx, outcome, StatusDecodeFailed, err)
	}
	outcome.Encoding = codec.Name()

	result := e.rules.Filter(filter.SplitLines(text), func(r filter.Removal) {
		e.reporter.LineRemoved(path, r)
	})
	outcome.Removals = result.Removed
	outcome.Removed = result.RemovedCount()

	if outcome.Removed == 0 {
		outcome.AfterHash = outcome.BeforeHash
		logger.Debug().Str("encoding", outcome.Encoding).Msg("no matching lines")
		return outcome
	}

	if e.opts.DryRun {
		outcome.Status = StatusPreview
		logger.Debug().Int("removed", outcome.Removed).Msg("preview")
		return outcome
	}

	if e.opts.Confirm != nil {
		ok, err := e.opts.Confirm(path, outcome.Removals)
		if err != nil {
			// Run stops the walk on a declined outcome that carries an error
			outcome.Status = StatusDeclined
			outcome.Err = fmt.Errorf("confirmation failed: %w", err)
			outcome.Error = outcome.Err.Error()
			logger.Warn().Err(err).Msg("confirmation aborted")
			return outcome
		}
		if !ok {
			outcome.Status = StatusDeclined
			logger.Info().Int("removed", outcome.Removed).Msg("rewrite declined")
			return outcome
		}
	}

	writeCodec := codec
	if e.opts.WriteBack == config.WriteBackPrimary {
		writeCodec = e.codecs.Primary()
	}

	out, err := writeCodec.Encode(filter.JoinLines(result.Lines))
	if err != nil {
		return e.fail(ctx, outcome, StatusWriteFailed, err)
	}
	if err := filesystem.WriteFileAtomic(e.fs, path, out); err != nil {
		return e.fail(ctx, outcome, StatusWriteFailed, err)
	}

	outcome.Status = StatusModified
	outcome.AfterHash = storage.Fingerprint(out)
	logger.Info().
		Int("removed", outcome.Removed).
		Str("encoding", outcome.Encoding).
		Str("write_encoding", writeCodec.Name()).
		Msg("file rewritten")
	return outcome
}

func (e *Engine) fail(ctx context.Context, outcome FileOutcome, status Status, err error) FileOutcome {
	outcome.Status = status
	outcome.Err = err
	outcome.Error = err.Error()

	logging.Get(ctx).Warn().
		Err(err).
		Str("path", outcome.Path).
		Str("status", string(status)).
		Msg("file skipped")
	e.reporter.Warn(outcome.Path, err)
	return outcome
}

type nopReporter struct{}

func (nopReporter) Start(string, bool)                {}
func (nopReporter) LineRemoved(string, filter.Removal) {}
func (nopReporter) FileDone(FileOutcome)              {}
func (nopReporter) Warn(string, error)                {}
func (nopReporter) Finish(Summary)                    {}
