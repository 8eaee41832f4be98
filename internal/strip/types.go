package strip

import (
	"time"

	"github.com/wizzomafizzo/consolestrip/internal/filter"
)

// Reporter receives human-facing progress for a run. Implementations must not
// fail the run; they only observe it.
type Reporter interface {
	Start(root string, dryRun bool)
	LineRemoved(path string, removal filter.Removal)
	FileDone(outcome FileOutcome)
	Warn(path string, err error)
	Finish(summary Summary)
}

// ConfirmFunc is asked before a modified file is written. Returning false
// leaves the file untouched.
type ConfirmFunc func(path string, removed []filter.Removal) (bool, error)

// Status is the final state of one processed file.
type Status string

const (
	StatusUnchanged    Status = "unchanged"
	StatusModified     Status = "modified"
	StatusPreview      Status = "preview"
	StatusDeclined     Status = "declined"
	StatusReadFailed   Status = "read_failed"
	StatusDecodeFailed Status = "decode_failed"
	StatusWriteFailed  Status = "write_failed"
)

// FileOutcome describes what happened to one scanned file.
type FileOutcome struct {
	Err        error            `json:"-"`
	Path       string           `json:"path"`
	Encoding   string           `json:"encoding,omitempty"`
	Status     Status           `json:"status"`
	Error      string           `json:"error,omitempty"`
	BeforeHash string           `json:"before_hash,omitempty"`
	AfterHash  string           `json:"after_hash,omitempty"`
	Removals   []filter.Removal `json:"-"`
	Removed    int              `json:"removed"`
}

// Counted reports whether the file's removals count towards the run totals.
func (o FileOutcome) Counted() bool {
	return o.Status == StatusModified || o.Status == StatusPreview
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	Scanned       int  `json:"scanned"`
	Modified      int  `json:"modified"`
	Removed       int  `json:"removed"`
	ReadFailures  int  `json:"read_failures"`
	WriteFailures int  `json:"write_failures"`
	Declined      int  `json:"declined"`
	DryRun        bool `json:"dry_run"`
}

// Add folds one file outcome into the summary.
func (s Summary) Add(o FileOutcome) Summary {
	s.Scanned++
	switch o.Status {
	case StatusModified, StatusPreview:
		s.Modified++
		s.Removed += o.Removed
	case StatusReadFailed, StatusDecodeFailed:
		s.ReadFailures++
	case StatusWriteFailed:
		s.WriteFailures++
	case StatusDeclined:
		s.Declined++
	case StatusUnchanged:
	}
	return s
}

// RunResult is returned by Engine.Run.
type RunResult struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Root       string        `json:"root"`
	Files      []FileOutcome `json:"files"`
	Summary    Summary       `json:"summary"`
}
