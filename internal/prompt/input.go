package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/wizzomafizzo/consolestrip/internal/filter"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled by user")

// maxPreview caps how many removals are listed before asking.
const maxPreview = 10

// Prompter interface wraps basic prompting functionality for testability
type Prompter interface {
	Prompt(string) (string, error)
	Close() error
}

// LinerPrompter wraps liner.State to implement Prompter interface
type LinerPrompter struct {
	*liner.State
}

// NewLinerPrompter creates a new liner-based prompter
func NewLinerPrompter() Prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &LinerPrompter{State: line}
}

// Prompt reads one line, mapping aborts to ErrCancelled
func (p *LinerPrompter) Prompt(prompt string) (string, error) {
	result, err := p.State.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return result, nil
}

// ConfirmWithPrompter asks a yes/no question. Empty input means no.
func ConfirmWithPrompter(prompter Prompter, question string) (bool, error) {
	answer, err := prompter.Prompt(color.CyanString(question + " [y/N] "))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// FileConfirmer returns a confirmation callback that lists the lines about to
// be removed from a file on out and asks before the rewrite.
func FileConfirmer(prompter Prompter, out io.Writer) func(path string, removals []filter.Removal) (bool, error) {
	return func(path string, removals []filter.Removal) (bool, error) {
		_, _ = fmt.Fprintf(out, "%s: %d %s to remove\n", path, len(removals), lineWord(len(removals)))
		for i, r := range removals {
			if i == maxPreview {
				_, _ = fmt.Fprintf(out, "  ... and %d more\n", len(removals)-maxPreview)
				break
			}
			_, _ = fmt.Fprintf(out, "  %4d  %s\n", r.Line, r.Text)
		}
		return ConfirmWithPrompter(prompter, "Rewrite "+path+"?")
	}
}

func lineWord(n int) string {
	if n == 1 {
		return "line"
	}
	return "lines"
}
