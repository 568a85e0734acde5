// Package report renders and persists batch run summaries.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/requalify/pkg/batch"
	"github.com/Sumatoshi-tech/requalify/pkg/persist"
)

// Column headers.
const (
	colFile    = "File"
	colGroup   = "Group"
	colOutcome = "Outcome"
	colEdits   = "Edits"
	colLines   = "Lines"
	colSize    = "Size"
	colNote    = "Note"
)

// Render writes the per-file table of summary to w, followed by any
// identifiers owned by several prefixes.
func Render(w io.Writer, summary *batch.Summary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	if summary.DryRun {
		tw.SetTitle("requalify (dry run)")
	}

	tw.AppendHeader(table.Row{colFile, colGroup, colOutcome, colEdits, colLines, colSize, colNote})

	for _, f := range summary.Files {
		tw.AppendRow(table.Row{
			f.Path,
			f.Group,
			string(f.Outcome),
			edits(f),
			lineDelta(f.Lines),
			sizeDelta(f),
			note(f),
		})
	}

	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d files", len(summary.Files)),
		"",
		totals(summary),
		summary.Edits(),
		"",
		signedBytes(summary.BytesDelta()),
		summary.Elapsed.Round(time.Millisecond).String(),
	})

	tw.Render()

	RenderAmbiguous(w, summary.Ambiguous)
}

// Save writes summary to path as JSON or YAML, chosen by extension.
func Save(path string, summary *batch.Summary) error {
	err := persist.SaveFile(path, summary)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	return nil
}

// Load reads a summary written by Save.
func Load(path string) (*batch.Summary, error) {
	var summary batch.Summary

	err := persist.LoadFile(path, &summary)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}

	return &summary, nil
}

// RenderAmbiguous writes the identifiers owned by several prefixes, keyed by
// group, together with the prefix that wins. Nothing is written when empty.
func RenderAmbiguous(w io.Writer, ambiguous map[string]map[string][]string) {
	if len(ambiguous) == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("identifiers owned by several prefixes")
	tw.AppendHeader(table.Row{colGroup, "Identifier", "Owners", "Resolved"})

	groups := make([]string, 0, len(ambiguous))
	for group := range ambiguous {
		groups = append(groups, group)
	}

	sort.Strings(groups)

	for _, group := range groups {
		idents := ambiguous[group]

		names := make([]string, 0, len(idents))
		for name := range idents {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			owners := idents[name]
			tw.AppendRow(table.Row{group, name, fmt.Sprint(owners), owners[0]})
		}
	}

	tw.Render()
}

func totals(summary *batch.Summary) string {
	return fmt.Sprintf("%d changed, %d planned, %d unchanged, %d skipped, %d failed",
		summary.Count(batch.OutcomeChanged),
		summary.Count(batch.OutcomePlanned),
		summary.Count(batch.OutcomeUnchanged),
		summary.Count(batch.OutcomeSkipped),
		summary.Count(batch.OutcomeFailed),
	)
}

func edits(f batch.FileResult) string {
	if f.Report == nil {
		return ""
	}

	return strconv.Itoa(f.Report.Edits())
}

func lineDelta(stats batch.LineStats) string {
	if stats.Added == 0 && stats.Removed == 0 {
		return ""
	}

	return fmt.Sprintf("+%d -%d", stats.Added, stats.Removed)
}

func sizeDelta(f batch.FileResult) string {
	if f.Report == nil || !f.Report.Changed {
		return ""
	}

	return signedBytes(f.Report.BytesAfter - f.Report.BytesBefore)
}

func signedBytes(n int) string {
	switch {
	case n > 0:
		return "+" + humanize.Bytes(uint64(n))
	case n < 0:
		return "-" + humanize.Bytes(uint64(-n))
	default:
		return "0 B"
	}
}

func note(f batch.FileResult) string {
	if f.Reason != "" {
		return f.Reason
	}

	if len(f.Warnings) > 0 {
		return f.Warnings[0]
	}

	return ""
}
