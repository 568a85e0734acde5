// Package batch drives rewrite jobs over a set of files, one file at a time,
// with filtering, dry-run previews, logging, tracing and metrics.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/requalify/pkg/observability"
	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
	"github.com/Sumatoshi-tech/requalify/pkg/textutil"
)

const (
	tracerName   = "requalify/batch"
	spanFile     = "requalify.file"
	languageGo   = "Go"
	reasonVendor = "vendored path"
	reasonBinary = "binary content"
	reasonGen    = "generated file"
)

// Edit kinds reported to metrics.
const (
	editDeclaration = "declaration"
	editImports     = "imports"
	editQualified   = "qualified"
	editCollapsed   = "collapsed"
	editStripped    = "stripped"
	editRemoved     = "imports_removed"
)

// ErrCancelled indicates a run stopped by its context between files.
var ErrCancelled = errors.New("run cancelled")

// Runner processes jobs strictly in sequence.
type Runner struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	metrics       *observability.Metrics
	differ        *Differ
	preview       io.Writer
	root          string
	language      string
	dryRun        bool
	failFast      bool
	skipVendor    bool
	skipGenerated bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithTracer sets the tracer used for per-file spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) { r.tracer = tracer }
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = metrics }
}

// WithDryRun computes every rewrite without writing files.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

// WithFailFast stops the run at the first failed file.
func WithFailFast(failFast bool) Option {
	return func(r *Runner) { r.failFast = failFast }
}

// WithSkipVendor skips paths that look vendored.
func WithSkipVendor(skip bool) Option {
	return func(r *Runner) { r.skipVendor = skip }
}

// WithSkipGenerated skips files carrying a "Code generated" marker.
func WithSkipGenerated(skip bool) Option {
	return func(r *Runner) { r.skipGenerated = skip }
}

// WithLanguage restricts the run to files detected as lang. Empty disables
// the check.
func WithLanguage(lang string) Option {
	return func(r *Runner) { r.language = lang }
}

// WithRoot sets the directory vendored paths are judged relative to.
func WithRoot(root string) Option {
	return func(r *Runner) { r.root = root }
}

// WithPreview renders a diff of every changed file to w during dry runs.
func WithPreview(w io.Writer, useColor bool) Option {
	return func(r *Runner) {
		r.preview = w
		r.differ = NewDiffer(useColor)
	}
}

// NewRunner builds a Runner. By default it logs nowhere, uses the global otel
// tracer, skips vendored and non-Go files, and continues past failures.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer(tracerName),
		metrics:    observability.NewMetrics(),
		differ:     NewDiffer(false),
		language:   languageGo,
		skipVendor: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run processes jobs in order. Every failure is recorded in the summary and
// joined into the returned error; with fail-fast the run stops at the first.
// The context is checked between files only.
func (r *Runner) Run(ctx context.Context, jobs []rewrite.Job) (*Summary, error) {
	summary := &Summary{
		DryRun:  r.dryRun,
		Started: time.Now(),
		Files:   make([]FileResult, 0, len(jobs)),
	}

	var errs []error

	for _, job := range jobs {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			summary.Stopped = true

			errs = append(errs, fmt.Errorf("%w: %w", ErrCancelled, ctxErr))

			break
		}

		r.noteAmbiguity(ctx, summary, job)

		res, err := r.runJob(ctx, job)
		summary.Files = append(summary.Files, res)

		if err != nil {
			errs = append(errs, err)

			if r.failFast {
				summary.Stopped = true

				break
			}
		}
	}

	summary.Elapsed = time.Since(summary.Started)

	r.logger.InfoContext(ctx, "run finished",
		slog.Int("files", len(summary.Files)),
		slog.Int("changed", summary.Count(OutcomeChanged)),
		slog.Int("planned", summary.Count(OutcomePlanned)),
		slog.Int("skipped", summary.Count(OutcomeSkipped)),
		slog.Int("failed", summary.Count(OutcomeFailed)),
		slog.Duration("elapsed", summary.Elapsed),
	)

	return summary, errors.Join(errs...)
}

func (r *Runner) runJob(ctx context.Context, job rewrite.Job) (FileResult, error) {
	ctx, span := r.tracer.Start(ctx, spanFile, trace.WithAttributes(
		attribute.String("file.path", job.Path),
		attribute.String("requalify.group", job.Group),
		attribute.String("requalify.mode", string(job.Mode)),
	))
	defer span.End()

	start := time.Now()
	res := FileResult{Path: job.Path, Group: job.Group}

	err := r.process(job, &res)

	res.Duration = time.Since(start)
	r.metrics.RecordFile(job.Group, string(res.Outcome), res.Duration)
	span.SetAttributes(attribute.String("requalify.outcome", string(res.Outcome)))

	logger := r.logger.With(slog.String("path", job.Path), slog.String("group", job.Group))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "file failed", slog.String("error", err.Error()))

		return res, err
	}

	for _, warning := range res.Warnings {
		logger.WarnContext(ctx, warning)
	}

	switch res.Outcome {
	case OutcomeSkipped:
		logger.DebugContext(ctx, "file skipped", slog.String("reason", res.Reason))
	default:
		logger.InfoContext(ctx, "file processed",
			slog.String("outcome", string(res.Outcome)),
			slog.Int("qualified", res.Report.Qualified.Total),
			slog.Int("imports_added", len(res.Report.Imports.Added)),
			slog.Int("collapsed", res.Report.Collapsed),
			slog.Int("lines_added", res.Lines.Added),
			slog.Int("lines_removed", res.Lines.Removed),
		)
	}

	return res, nil
}

func (r *Runner) process(job rewrite.Job, res *FileResult) error {
	src, perm, err := rewrite.ReadSource(job.Path)
	if err != nil {
		return r.fail(res, err)
	}

	reason := r.skipReason(job.Path, []byte(src))
	if reason != "" {
		res.Outcome = OutcomeSkipped
		res.Reason = reason

		return nil
	}

	out, rep, err := rewrite.Transform(src, job)
	if err != nil {
		return r.fail(res, fmt.Errorf("transform %s: %w", job.Path, err))
	}

	res.Report = &rep
	res.Warnings = anchorWarnings(job, rep)

	if !rep.Changed {
		res.Outcome = OutcomeUnchanged

		return nil
	}

	diffs := r.differ.Lines(src, out)
	res.Lines = Stats(diffs)

	if r.dryRun {
		res.Outcome = OutcomePlanned

		if r.preview != nil {
			err = r.differ.Render(r.preview, job.Path, diffs)
			if err != nil {
				return r.fail(res, err)
			}
		}

		return nil
	}

	err = rewrite.WriteSource(job.Path, out, perm)
	if err != nil {
		return r.fail(res, err)
	}

	rep.Written = true
	res.Outcome = OutcomeChanged

	r.recordEdits(rep)
	r.metrics.RecordWritten(len(out))

	return nil
}

func (r *Runner) fail(res *FileResult, err error) error {
	res.Outcome = OutcomeFailed
	res.Reason = err.Error()

	return err
}

func (r *Runner) skipReason(path string, data []byte) string {
	if r.skipVendor && enry.IsVendor(r.relative(path)) {
		return reasonVendor
	}

	if textutil.IsBinary(data) {
		return reasonBinary
	}

	if r.language != "" {
		lang := enry.GetLanguage(filepath.Base(path), data)
		if lang != r.language {
			return fmt.Sprintf("language %q, want %q", lang, r.language)
		}
	}

	if r.skipGenerated && textutil.IsGenerated(data) {
		return reasonGen
	}

	return ""
}

func (r *Runner) relative(path string) string {
	if r.root != "" {
		rel, err := filepath.Rel(r.root, path)
		if err == nil {
			path = rel
		}
	}

	return filepath.ToSlash(path)
}

func (r *Runner) noteAmbiguity(ctx context.Context, summary *Summary, job rewrite.Job) {
	if _, seen := summary.Ambiguous[job.Group]; seen {
		return
	}

	ambiguous := job.Table.Ambiguous()
	if len(ambiguous) == 0 {
		return
	}

	if summary.Ambiguous == nil {
		summary.Ambiguous = make(map[string]map[string][]string)
	}

	summary.Ambiguous[job.Group] = ambiguous

	for _, ident := range job.Table.AmbiguousNames() {
		owner, _ := job.Table.Resolve(ident)
		r.logger.WarnContext(ctx, "identifier owned by several prefixes",
			slog.String("group", job.Group),
			slog.String("identifier", ident),
			slog.Any("owners", ambiguous[ident]),
			slog.String("resolved", owner),
		)
	}
}

func (r *Runner) recordEdits(rep rewrite.Report) {
	if rep.DeclarationMatched && rep.Previous != rep.Namespace {
		r.metrics.RecordEdits(editDeclaration, 1)
	}

	r.metrics.RecordEdits(editImports, len(rep.Imports.Added))
	r.metrics.RecordEdits(editQualified, rep.Qualified.Total)
	r.metrics.RecordEdits(editCollapsed, rep.Collapsed)

	if rep.Normalize != nil {
		r.metrics.RecordEdits(editStripped, rep.Normalize.Stripped)
		r.metrics.RecordEdits(editRemoved, rep.Normalize.SelfImportsRemoved)

		if rep.Normalize.StaleImportsRemoved {
			r.metrics.RecordEdits(editRemoved, 1)
		}
	}
}

// anchorWarnings lists the soft failures of a job: anchors that matched
// nothing leave the text as it was.
func anchorWarnings(job rewrite.Job, rep rewrite.Report) []string {
	var warnings []string

	if job.Namespace != "" && !rep.DeclarationMatched {
		warnings = append(warnings, "package clause not found; declaration left unchanged")
	}

	if rep.Mode == rewrite.ModeQualify && len(job.Imports) > 0 && !rep.Imports.Matched() {
		warnings = append(warnings, "no import anchor found; imports not merged")
	}

	if len(job.StaleImports) > 0 && rep.Normalize != nil && !rep.Normalize.StaleImportsRemoved {
		warnings = append(warnings, "stale import group not found")
	}

	return warnings
}
