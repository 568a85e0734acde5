package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Sumatoshi-tech/requalify/pkg/ownership"
	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
)

var (
	// ErrNoFiles indicates a group that selects no files.
	ErrNoFiles = errors.New("group selects no files")
	// ErrNotDirectory indicates a group dir that is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// defaultPattern selects Go sources.
const defaultPattern = "*.go"

// Jobs expands the selected groups into rewrite jobs rooted at root. Groups
// keep manifest order and files are sorted within a group. With no names
// every group is expanded.
func (m *Manifest) Jobs(root string, names ...string) ([]rewrite.Job, error) {
	groups, err := m.selectGroups(names)
	if err != nil {
		return nil, err
	}

	var jobs []rewrite.Job

	for _, g := range groups {
		groupJobs, err := m.groupJobs(root, g)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Name, err)
		}

		jobs = append(jobs, groupJobs...)
	}

	return jobs, nil
}

func (m *Manifest) selectGroups(names []string) ([]Group, error) {
	if len(names) == 0 {
		return m.Groups, nil
	}

	out := make([]Group, 0, len(names))

	for _, name := range names {
		g, ok := m.Group(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q%s", ErrUnknownGroup, name, hint(name, m.GroupNames()))
		}

		out = append(out, g)
	}

	return out, nil
}

func (m *Manifest) groupJobs(root string, g Group) ([]rewrite.Job, error) {
	mode, err := rewrite.ParseMode(g.Mode)
	if err != nil {
		return nil, err
	}

	for _, prefix := range g.Prefixes {
		if !m.Tables.Has(prefix) {
			return nil, fmt.Errorf("%w: %q%s", ownership.ErrUnknownPrefix, prefix, hint(prefix, m.Tables.Prefixes()))
		}
	}

	table, err := m.Tables.Subset(g.Prefixes...)
	if err != nil {
		return nil, err
	}

	files, err := g.ListFiles(root)
	if err != nil {
		return nil, err
	}

	jobs := make([]rewrite.Job, 0, len(files))
	for _, path := range files {
		jobs = append(jobs, rewrite.Job{
			Path:         path,
			Group:        g.Name,
			Namespace:    g.Namespace,
			Imports:      slices.Clone(g.Imports),
			Table:        table,
			Mode:         mode,
			StaleImports: slices.Clone(g.StaleImports),
			Fold:         slices.Clone(g.Fold),
			SelfImport:   g.SelfImport,
			SkipLiterals: g.SkipLiterals,
		})
	}

	return jobs, nil
}

// ListFiles resolves the files of g under root, sorted and without duplicates.
// Explicit files must exist.
func (g Group) ListFiles(root string) ([]string, error) {
	base := filepath.Join(root, g.Dir)

	var files []string

	if len(g.Files) > 0 {
		for _, name := range g.Files {
			path := filepath.Join(base, name)

			_, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", path, err)
			}

			files = append(files, path)
		}
	} else {
		matched, err := g.match(base)
		if err != nil {
			return nil, err
		}

		files = matched
	}

	slices.Sort(files)
	files = slices.Compact(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, base)
	}

	return files, nil
}

// globPattern returns the slash-separated pattern matched relative to Dir.
// Recursive groups match the pattern at any depth.
func (g Group) globPattern() string {
	pattern := g.Pattern
	if pattern == "" {
		pattern = defaultPattern
	}

	pattern = filepath.ToSlash(pattern)
	if g.Recursive && !strings.HasPrefix(pattern, "**/") {
		pattern = "**/" + pattern
	}

	return pattern
}

func (g Group) match(base string) ([]string, error) {
	pattern := g.globPattern()
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", base, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("list %s: %w", base, ErrNotDirectory)
	}

	matches, err := doublestar.Glob(os.DirFS(base), pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", base, err)
	}

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		files = append(files, filepath.Join(base, filepath.FromSlash(rel)))
	}

	return files, nil
}
