package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/requalify/pkg/batch"
	"github.com/Sumatoshi-tech/requalify/pkg/report"
	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
)

// ErrFilesFailed is returned when at least one file could not be rewritten.
var ErrFilesFailed = errors.New("some files failed")

// execute runs jobs with the environment's settings, then renders the
// summary and writes the optional report and metrics files.
func (e *environment) execute(ctx context.Context, jobs []rewrite.Job) error {
	runner := batch.NewRunner(
		batch.WithLogger(e.providers.Logger),
		batch.WithTracer(e.providers.Tracer),
		batch.WithMetrics(e.providers.Metrics),
		batch.WithRoot(e.cfg.Root),
		batch.WithDryRun(e.cfg.Run.DryRun),
		batch.WithFailFast(e.cfg.Run.FailFast),
		batch.WithSkipVendor(e.cfg.Run.SkipVendor),
		batch.WithSkipGenerated(e.cfg.Run.SkipGenerated),
		batch.WithPreview(e.out, e.useColor),
	)

	summary, runErr := runner.Run(ctx, jobs)

	report.Render(e.out, summary)
	e.printStatus(summary)

	errs := []error{runErr}

	if e.cfg.Output.Report != "" {
		errs = append(errs, report.Save(e.cfg.Output.Report, summary))
	}

	if e.cfg.Output.MetricsFile != "" {
		errs = append(errs, e.providers.Metrics.WriteTextfile(e.cfg.Output.MetricsFile))
	}

	err := errors.Join(errs...)
	if err != nil && summary.Failed() {
		return fmt.Errorf("%w: %w", ErrFilesFailed, err)
	}

	return err
}

func (e *environment) printStatus(summary *batch.Summary) {
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)

	for _, c := range []*color.Color{ok, bad} {
		if e.useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	switch {
	case summary.Failed():
		bad.Fprintf(e.out, "FAILED: %d of %d files\n", summary.Count(batch.OutcomeFailed), len(summary.Files))
	case summary.Stopped:
		bad.Fprintf(e.out, "STOPPED after %d files\n", len(summary.Files))
	case summary.DryRun:
		ok.Fprintf(e.out, "DRY RUN: %d files would change\n", summary.Count(batch.OutcomePlanned))
	default:
		ok.Fprintf(e.out, "OK: %d files changed\n", summary.Count(batch.OutcomeChanged))
	}
}
