package rewrite

import (
	"regexp"
	"strings"
)

// MergeMode describes how MergeImports changed the import section.
type MergeMode string

// Merge outcomes.
const (
	// MergeNoAnchor means neither an import section nor a package clause was found.
	MergeNoAnchor MergeMode = "no-anchor"
	// MergeUnchanged means every required path was already imported.
	MergeUnchanged MergeMode = "unchanged"
	// MergeWidened means paths were prepended to an existing import block.
	MergeWidened MergeMode = "widened"
	// MergeConverted means a single-line import was turned into a block.
	MergeConverted MergeMode = "converted"
	// MergeInjected means a new block was placed after the package clause.
	MergeInjected MergeMode = "injected"
)

// MergeResult reports what MergeImports did.
type MergeResult struct {
	Mode    MergeMode `json:"mode"              yaml:"mode"`
	Added   []string  `json:"added,omitempty"   yaml:"added,omitempty"`
	Present []string  `json:"present,omitempty" yaml:"present,omitempty"`
}

// Matched reports whether an anchor for the import section was found.
func (r MergeResult) Matched() bool {
	return r.Mode != MergeNoAnchor && r.Mode != ""
}

var (
	blockMarkerPattern = regexp.MustCompile(`(?m)^import[ \t]*\(`)
	singleImportRegexp = regexp.MustCompile(`(?m)^import[ \t]+((?:[\p{L}\p{N}_.]+[ \t]+)?"[^"\n]*")[ \t]*(//[^\n]*)?$`)
	quotedPathPattern  = regexp.MustCompile(`"([^"\n]*)"`)
)

const blockOpen = "import (\n"

// MergeImports makes sure every path in paths is imported exactly once.
//
// With an "import (" block the missing paths are prepended as their own group,
// separated from the existing entries by a blank line. A lone single-line
// import is widened into a block. Without any import section a new block is
// placed right after the package clause. Paths already imported are left
// alone and reported in Present.
func MergeImports(src string, paths []string) (string, MergeResult) {
	required := uniquePaths(paths)

	if loc := blockMarkerPattern.FindStringIndex(src); loc != nil {
		existing := blockPaths(src, loc[1])
		added, present := partition(required, existing)

		if len(added) == 0 {
			return src, MergeResult{Mode: MergeUnchanged, Present: present}
		}

		out := src[:loc[1]] + "\n" + importLines(added) + src[loc[1]:]

		return out, MergeResult{Mode: MergeWidened, Added: added, Present: present}
	}

	if loc := singleImportRegexp.FindStringSubmatchIndex(src); loc != nil {
		spec := src[loc[2]:loc[3]]
		existing := quotedPaths(spec)
		added, present := partition(required, existing)

		if len(added) == 0 {
			return src, MergeResult{Mode: MergeUnchanged, Present: present}
		}

		if loc[4] >= 0 {
			spec += " " + strings.TrimRight(src[loc[4]:loc[5]], " \t")
		}

		block := blockOpen + importLines(added) + "\n\t" + spec + "\n)"

		return src[:loc[0]] + block + src[loc[1]:], MergeResult{Mode: MergeConverted, Added: added, Present: present}
	}

	end := declarationLineEnd(src)
	if end < 0 {
		return src, MergeResult{Mode: MergeNoAnchor}
	}

	if len(required) == 0 {
		return src, MergeResult{Mode: MergeUnchanged}
	}

	block := "\n\n" + blockOpen + importLines(required) + ")"

	return src[:end] + block + src[end:], MergeResult{Mode: MergeInjected, Added: required}
}

// RemoveImportSignature deletes an import group previously injected for
// paths. Two exact shapes are recognised: the group as the leading entries of
// a block followed by a blank line, and a standalone block holding exactly
// those paths (deleted with its trailing blank line). Anything else is left
// untouched.
func RemoveImportSignature(src string, paths []string) (string, bool) {
	if len(paths) == 0 {
		return src, false
	}

	lines := importLines(paths)

	leading := blockOpen + lines + "\n"
	if strings.Contains(src, leading) {
		return strings.ReplaceAll(src, leading, blockOpen), true
	}

	standalone := blockOpen + lines + ")\n"
	if strings.Contains(src, standalone+"\n") {
		return strings.ReplaceAll(src, standalone+"\n", ""), true
	}

	if strings.Contains(src, standalone) {
		return strings.ReplaceAll(src, standalone, ""), true
	}

	return src, false
}

// RemoveImport drops every import spec line for path, inside a block or as a
// single-line import. It returns the number of lines removed.
func RemoveImport(src, path string) (string, int) {
	if path == "" {
		return src, 0
	}

	pattern := regexp.MustCompile(`(?m)^(?:import[ \t]+|[ \t]+)(?:[\p{L}\p{N}_.]+[ \t]+)?"` +
		regexp.QuoteMeta(path) + `"[ \t]*(?://[^\n]*)?\n`)

	n := len(pattern.FindAllStringIndex(src, -1))
	if n == 0 {
		return src, 0
	}

	return pattern.ReplaceAllLiteralString(src, ""), n
}

// ImportedPaths lists the paths imported by src, in order of appearance.
func ImportedPaths(src string) []string {
	if loc := blockMarkerPattern.FindStringIndex(src); loc != nil {
		return blockPaths(src, loc[1])
	}

	if m := singleImportRegexp.FindStringSubmatch(src); m != nil {
		return quotedPaths(m[1])
	}

	return nil
}

func blockPaths(src string, bodyStart int) []string {
	return quotedPaths(src[bodyStart:blockEnd(src, bodyStart)])
}

// blockEnd returns the index of the ")" closing an import block whose body
// starts at from. Parentheses inside quoted paths and comments are skipped.
// An unterminated block ends at len(src).
func blockEnd(src string, from int) int {
	for i := from; i < len(src); i++ {
		switch src[i] {
		case ')':
			return i
		case '"', '`':
			i = closingQuote(src, i)
		case '/':
			if i+1 >= len(src) {
				continue
			}

			switch src[i+1] {
			case '/':
				nl := strings.IndexByte(src[i:], '\n')
				if nl < 0 {
					return len(src)
				}

				i += nl
			case '*':
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return len(src)
				}

				i += 2 + end + 1
			}
		}
	}

	return len(src)
}

// closingQuote returns the index of the quote ending the literal opened at
// open. Interpreted strings also end at a newline.
func closingQuote(src string, open int) int {
	quote := src[open]

	for i := open + 1; i < len(src); i++ {
		switch {
		case src[i] == quote:
			return i
		case quote == '"' && src[i] == '\\':
			i++
		case quote == '"' && src[i] == '\n':
			return i
		}
	}

	return len(src)
}

func quotedPaths(text string) []string {
	matches := quotedPathPattern.FindAllStringSubmatch(text, -1)

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}

	return out
}

func importLines(paths []string) string {
	var sb strings.Builder

	for _, p := range paths {
		sb.WriteString("\t\"")
		sb.WriteString(p)
		sb.WriteString("\"\n")
	}

	return sb.String()
}

func uniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		if p == "" {
			continue
		}

		if _, ok := seen[p]; ok {
			continue
		}

		seen[p] = struct{}{}
		out = append(out, p)
	}

	return out
}

func partition(required, existing []string) (added, present []string) {
	have := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		have[p] = struct{}{}
	}

	for _, p := range required {
		if _, ok := have[p]; ok {
			present = append(present, p)
		} else {
			added = append(added, p)
		}
	}

	return added, present
}
