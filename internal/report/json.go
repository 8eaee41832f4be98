package report

import (
	"encoding/json"
	"io"

	"github.com/wizzomafizzo/consolestrip/internal/filter"
	"github.com/wizzomafizzo/consolestrip/internal/strip"
)

// JSON stays silent during the run and writes one document at Finish.
type JSON struct {
	w        io.Writer
	doc      jsonDocument
	finished bool
}

type jsonWarning struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type jsonDocument struct {
	Root     string              `json:"root"`
	Files    []strip.FileOutcome `json:"files"`
	Warnings []jsonWarning       `json:"warnings"`
	Summary  strip.Summary       `json:"summary"`
}

// NewJSON creates a JSON reporter writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{
		w: w,
		doc: jsonDocument{
			Files:    []strip.FileOutcome{},
			Warnings: []jsonWarning{},
		},
	}
}

func (j *JSON) Start(root string, _ bool) {
	j.doc.Root = root
}

func (j *JSON) LineRemoved(string, filter.Removal) {}

func (j *JSON) FileDone(outcome strip.FileOutcome) {
	if outcome.Status == strip.StatusUnchanged {
		return
	}
	j.doc.Files = append(j.doc.Files, outcome)
}

func (j *JSON) Warn(path string, err error) {
	j.doc.Warnings = append(j.doc.Warnings, jsonWarning{Path: path, Error: err.Error()})
}

func (j *JSON) Finish(summary strip.Summary) {
	if j.finished {
		return
	}
	j.finished = true
	j.doc.Summary = summary

	encoder := json.NewEncoder(j.w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(j.doc)
}
