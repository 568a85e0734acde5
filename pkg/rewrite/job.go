package rewrite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Sumatoshi-tech/requalify/pkg/ownership"
)

// Mode selects the pipeline a Job runs.
type Mode string

// Pipelines.
const (
	// ModeQualify runs declaration, import merge, qualification and collapse.
	ModeQualify Mode = "qualify"
	// ModeNormalize runs only the normalization pass.
	ModeNormalize Mode = "normalize"
)

// Sentinel errors.
var (
	// ErrInvalidMode indicates an unknown pipeline mode.
	ErrInvalidMode = errors.New("invalid rewrite mode")
	// ErrIsDirectory indicates a job path that names a directory.
	ErrIsDirectory = errors.New("path is a directory")
)

// ParseMode converts a mode name. The empty string selects ModeQualify.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeQualify:
		return ModeQualify, nil
	case ModeNormalize:
		return ModeNormalize, nil
	default:
		return "", fmt.Errorf("%w: %q (want %s or %s)", ErrInvalidMode, name, ModeQualify, ModeNormalize)
	}
}

// Job describes one file rewrite.
type Job struct {
	Path      string
	Group     string
	Namespace string
	Imports   []string
	Table     *ownership.Table
	Mode      Mode

	// Normalization inputs.
	StaleImports []string
	Fold         []string
	SelfImport   string

	SkipLiterals bool
}

// Report records the outcome of each step of a Job.
type Report struct {
	Path      string `json:"path"            yaml:"path"`
	Group     string `json:"group,omitempty" yaml:"group,omitempty"`
	Mode      Mode   `json:"mode"            yaml:"mode"`
	Namespace string `json:"namespace"       yaml:"namespace"`
	Previous  string `json:"previous"        yaml:"previous"`

	DeclarationMatched bool         `json:"declaration_matched" yaml:"declaration_matched"`
	Imports            MergeResult  `json:"imports"             yaml:"imports"`
	Qualified          QualifyStats `json:"qualified"           yaml:"qualified"`
	Collapsed          int          `json:"collapsed"           yaml:"collapsed"`

	Normalize *NormalizeReport `json:"normalize,omitempty" yaml:"normalize,omitempty"`

	BytesBefore int  `json:"bytes_before" yaml:"bytes_before"`
	BytesAfter  int  `json:"bytes_after"  yaml:"bytes_after"`
	Changed     bool `json:"changed"      yaml:"changed"`
	Written     bool `json:"written"      yaml:"written"`
}

// Edits returns the number of textual edits the job made.
func (r Report) Edits() int {
	n := r.Qualified.Total + r.Collapsed + len(r.Imports.Added)

	if r.Normalize != nil {
		n += r.Normalize.Stripped + r.Normalize.SelfImportsRemoved
		if r.Normalize.StaleImportsRemoved {
			n++
		}
	}

	if r.Previous != r.Namespace && r.DeclarationMatched {
		n++
	}

	return n
}

// Transform runs the job pipeline over src. It performs no I/O.
func Transform(src string, job Job) (string, Report, error) {
	rep := Report{
		Path:        job.Path,
		Group:       job.Group,
		Mode:        job.Mode,
		Namespace:   job.Namespace,
		BytesBefore: len(src),
	}

	rep.Previous, _ = DeclaredNamespace(src)
	if rep.Namespace == "" {
		rep.Namespace = rep.Previous
	}

	var out string

	switch job.Mode {
	case ModeQualify, "":
		rep.Mode = ModeQualify
		out = qualifyPipeline(src, job, &rep)
	case ModeNormalize:
		var nrep NormalizeReport

		out, nrep = Normalize(src, NormalizeOptions{
			Namespace:    job.Namespace,
			Table:        job.Table,
			Fold:         job.Fold,
			StaleImports: job.StaleImports,
			SelfImport:   job.SelfImport,
			SkipLiterals: job.SkipLiterals,
		})
		rep.DeclarationMatched = nrep.DeclarationMatched
		rep.Collapsed = nrep.Collapsed
		rep.Normalize = &nrep
	default:
		return src, rep, fmt.Errorf("%w: %q", ErrInvalidMode, job.Mode)
	}

	rep.BytesAfter = len(out)
	rep.Changed = out != src

	return out, rep, nil
}

func qualifyPipeline(src string, job Job, rep *Report) string {
	if job.Namespace != "" {
		src, rep.DeclarationMatched = RewriteDeclaration(src, job.Namespace)
	} else {
		_, rep.DeclarationMatched = DeclaredNamespace(src)
	}

	src, rep.Imports = MergeImports(src, job.Imports)
	src, rep.Qualified = NewQualifier(job.Table, WithSkipLiterals(job.SkipLiterals)).Qualify(src)
	src, rep.Collapsed = mapCode(src, job.SkipLiterals, func(seg string) (string, int) {
		return CollapseQualifiers(seg, job.Table.Prefixes()...)
	})

	return src
}

// ReadSource reads a whole source file together with its permission bits.
func ReadSource(path string) (string, fs.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat source: %w", err)
	}

	if info.IsDir() {
		return "", 0, fmt.Errorf("read source %s: %w", path, ErrIsDirectory)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("read source: %w", err)
	}

	return string(data), info.Mode().Perm(), nil
}

// WriteSource writes content over path in one buffer.
func WriteSource(path, content string, perm fs.FileMode) error {
	err := os.WriteFile(path, []byte(content), perm)
	if err != nil {
		return fmt.Errorf("write source: %w", err)
	}

	return nil
}

// Apply reads job.Path, transforms it and writes it back when it changed.
// I/O failures are returned; anchors that did not match only show up in the
// report.
func Apply(job Job) (Report, error) {
	src, perm, err := ReadSource(job.Path)
	if err != nil {
		return Report{Path: job.Path, Group: job.Group, Mode: job.Mode}, err
	}

	out, rep, err := Transform(src, job)
	if err != nil {
		return rep, err
	}

	if !rep.Changed {
		return rep, nil
	}

	err = WriteSource(job.Path, out, perm)
	if err != nil {
		return rep, err
	}

	rep.Written = true

	return rep, nil
}
