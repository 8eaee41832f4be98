// Package report renders run progress for people (Console) and for scripts (JSON).
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/wizzomafizzo/consolestrip/internal/filter"
	"github.com/wizzomafizzo/consolestrip/internal/strip"
)

const ruleWidth = 60

// Console prints human-readable progress. Warnings go to a separate writer.
type Console struct {
	out     io.Writer
	errOut  io.Writer
	removed *color.Color
	ok      *color.Color
	preview *color.Color
	warn    *color.Color
	header  *color.Color
	verbose bool
}

// ConsoleOptions configures a Console reporter.
type ConsoleOptions struct {
	// Color enables ANSI colors regardless of terminal detection.
	Color bool
	// Quiet suppresses per-line removal messages.
	Quiet bool
}

// NewConsole creates a console reporter writing to out and errOut.
func NewConsole(out, errOut io.Writer, opts ConsoleOptions) *Console {
	c := &Console{
		out:     out,
		errOut:  errOut,
		removed: color.New(color.FgRed),
		ok:      color.New(color.FgGreen),
		preview: color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
		header:  color.New(color.Bold),
		verbose: !opts.Quiet,
	}
	for _, col := range []*color.Color{c.removed, c.ok, c.preview, c.warn, c.header} {
		if opts.Color {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) Start(root string, dryRun bool) {
	_, _ = c.header.Fprintln(c.out, "consolestrip: console output cleanup")
	_, _ = fmt.Fprintln(c.out, strings.Repeat("=", ruleWidth))
	_, _ = fmt.Fprintf(c.out, "Scanning directory: %s\n", root)
	if dryRun {
		_, _ = c.preview.Fprintln(c.out, "[dry-run] processing files...")
	} else {
		_, _ = fmt.Fprintln(c.out, "Processing files...")
	}
	_, _ = fmt.Fprintln(c.out, strings.Repeat("-", ruleWidth))
}

func (c *Console) LineRemoved(_ string, removal filter.Removal) {
	if !c.verbose {
		return
	}
	_, _ = c.removed.Fprintf(c.out, "  - removed: %s\n", removal.Text)
}

func (c *Console) FileDone(outcome strip.FileOutcome) {
	switch outcome.Status {
	case strip.StatusModified:
		_, _ = c.ok.Fprintf(c.out, "done: %s (removed %d %s)\n",
			outcome.Path, outcome.Removed, plural(outcome.Removed, "line", "lines"))
	case strip.StatusPreview:
		_, _ = c.preview.Fprintf(c.out, "[dry-run] %s would remove %d %s\n",
			outcome.Path, outcome.Removed, plural(outcome.Removed, "line", "lines"))
	case strip.StatusDeclined:
		_, _ = fmt.Fprintf(c.out, "skipped: %s (%d %s kept)\n",
			outcome.Path, outcome.Removed, plural(outcome.Removed, "line", "lines"))
	case strip.StatusUnchanged, strip.StatusReadFailed, strip.StatusDecodeFailed, strip.StatusWriteFailed:
	}
}

func (c *Console) Warn(path string, err error) {
	_, _ = c.warn.Fprintf(c.errOut, "warning: %s: %v\n", path, err)
}

func (c *Console) Finish(summary strip.Summary) {
	_, _ = fmt.Fprintln(c.out, strings.Repeat("-", ruleWidth))
	_, _ = c.header.Fprintln(c.out, "Summary:")
	_, _ = fmt.Fprintf(c.out, "  files scanned:  %d\n", summary.Scanned)
	_, _ = fmt.Fprintf(c.out, "  files modified: %d\n", summary.Modified)
	_, _ = fmt.Fprintf(c.out, "  lines removed:  %d\n", summary.Removed)
	if summary.ReadFailures > 0 {
		_, _ = c.warn.Fprintf(c.out, "  read failures:  %d\n", summary.ReadFailures)
	}
	if summary.WriteFailures > 0 {
		_, _ = c.warn.Fprintf(c.out, "  write failures: %d\n", summary.WriteFailures)
	}
	if summary.Declined > 0 {
		_, _ = fmt.Fprintf(c.out, "  files declined: %d\n", summary.Declined)
	}

	if summary.DryRun {
		_, _ = fmt.Fprintln(c.out)
		_, _ = c.preview.Fprintln(c.out, "This was a dry run; no files were changed.")
		_, _ = fmt.Fprintln(c.out, "Run again without --dry-run to apply the changes.")
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
