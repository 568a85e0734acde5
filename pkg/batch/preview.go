package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// defaultContext is the number of unchanged lines shown around a change.
const defaultContext = 2

// elision marks unchanged lines left out of a preview.
const elision = "  ..."

// LineStats counts whole-line changes between two versions of a file.
type LineStats struct {
	Added   int `json:"added"   yaml:"added"`
	Removed int `json:"removed" yaml:"removed"`
}

// Differ computes line-level diffs and renders them for dry runs.
type Differ struct {
	dmp     *diffmatchpatch.DiffMatchPatch
	context int
	header  *color.Color
	added   *color.Color
	removed *color.Color
}

// NewDiffer returns a Differ. Colour escapes are written only when useColor is set.
func NewDiffer(useColor bool) *Differ {
	d := &Differ{
		dmp:     diffmatchpatch.New(),
		context: defaultContext,
		header:  color.New(color.Bold),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}

	for _, c := range []*color.Color{d.header, d.added, d.removed} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return d
}

// Lines diffs before and after line by line.
func (d *Differ) Lines(before, after string) []diffmatchpatch.Diff {
	src, dst, lines := d.dmp.DiffLinesToChars(before, after)
	diffs := d.dmp.DiffMain(src, dst, false)

	return d.dmp.DiffCharsToLines(diffs, lines)
}

// Stats counts added and removed lines in diffs.
func Stats(diffs []diffmatchpatch.Diff) LineStats {
	var stats LineStats

	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			stats.Added += len(splitLines(diff.Text))
		case diffmatchpatch.DiffDelete:
			stats.Removed += len(splitLines(diff.Text))
		case diffmatchpatch.DiffEqual:
		}
	}

	return stats
}

// Render writes a unified-style preview of diffs for path to w.
func (d *Differ) Render(w io.Writer, path string, diffs []diffmatchpatch.Diff) error {
	var b strings.Builder

	d.header.Fprintf(&b, "--- %s\n+++ %s (requalified)\n", path, path)

	for i, diff := range diffs {
		lines := splitLines(diff.Text)

		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			for _, line := range lines {
				d.added.Fprintf(&b, "+%s\n", line)
			}
		case diffmatchpatch.DiffDelete:
			for _, line := range lines {
				d.removed.Fprintf(&b, "-%s\n", line)
			}
		case diffmatchpatch.DiffEqual:
			d.writeContext(&b, lines, i == 0, i == len(diffs)-1)
		}
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write preview: %w", err)
	}

	return nil
}

func (d *Differ) writeContext(b *strings.Builder, lines []string, first, last bool) {
	head, tail := d.context, d.context

	if first {
		head = 0
	}

	if last {
		tail = 0
	}

	if head+tail >= len(lines) {
		for _, line := range lines {
			fmt.Fprintf(b, " %s\n", line)
		}

		return
	}

	for _, line := range lines[:head] {
		fmt.Fprintf(b, " %s\n", line)
	}

	b.WriteString(elision + "\n")

	for _, line := range lines[len(lines)-tail:] {
		fmt.Fprintf(b, " %s\n", line)
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
