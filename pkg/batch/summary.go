package batch

import (
	"time"

	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
)

// Outcome classifies what happened to one file.
type Outcome string

// File outcomes.
const (
	// OutcomeChanged means the file was rewritten on disk.
	OutcomeChanged Outcome = "changed"
	// OutcomePlanned means the file would change but the run is a dry run.
	OutcomePlanned Outcome = "planned"
	// OutcomeUnchanged means the pipeline produced identical text.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeSkipped means the file was filtered out before rewriting.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means reading, transforming or writing failed.
	OutcomeFailed Outcome = "failed"
)

// FileResult is the record kept for one job.
type FileResult struct {
	Path     string          `json:"path"               yaml:"path"`
	Group    string          `json:"group,omitempty"    yaml:"group,omitempty"`
	Outcome  Outcome         `json:"outcome"            yaml:"outcome"`
	Reason   string          `json:"reason,omitempty"   yaml:"reason,omitempty"`
	Warnings []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Lines    LineStats       `json:"lines"              yaml:"lines"`
	Report   *rewrite.Report `json:"report,omitempty"   yaml:"report,omitempty"`
	Duration time.Duration   `json:"duration"           yaml:"duration"`
}

// Summary aggregates a whole run.
type Summary struct {
	DryRun  bool          `json:"dry_run" yaml:"dry_run"`
	Started time.Time     `json:"started" yaml:"started"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	Files   []FileResult  `json:"files"   yaml:"files"`
	Stopped bool          `json:"stopped" yaml:"stopped"`

	// Ambiguous maps group to identifiers owned by more than one of its prefixes.
	Ambiguous map[string]map[string][]string `json:"ambiguous,omitempty" yaml:"ambiguous,omitempty"`
}

// Count returns the number of files with outcome o.
func (s *Summary) Count(o Outcome) int {
	n := 0

	for _, f := range s.Files {
		if f.Outcome == o {
			n++
		}
	}

	return n
}

// Edits returns the total number of textual edits across files.
func (s *Summary) Edits() int {
	n := 0

	for _, f := range s.Files {
		if f.Report != nil {
			n += f.Report.Edits()
		}
	}

	return n
}

// BytesDelta returns the size change over all changed or planned files.
func (s *Summary) BytesDelta() int {
	delta := 0

	for _, f := range s.Files {
		if f.Report != nil && f.Report.Changed {
			delta += f.Report.BytesAfter - f.Report.BytesBefore
		}
	}

	return delta
}

// Failed reports whether any file failed.
func (s *Summary) Failed() bool {
	return s.Count(OutcomeFailed) > 0
}
