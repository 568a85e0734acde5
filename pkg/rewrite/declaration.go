// Package rewrite implements the textual source rewriting engine: package
// clause rewriting, import block merging, identifier qualification and the
// normalization pass that repairs files qualified more than once.
//
// Every transform is a pure string-to-string function. None of them parses
// source into a syntax tree; matching is anchored on fixed markers and token
// boundaries. A missing anchor is never an error: the input is returned
// unchanged and the result reports that nothing matched.
package rewrite

import "regexp"

// declarationPattern matches the package clause at the start of a line.
// Group 1 is the keyword and separating blanks, group 2 the name.
var declarationPattern = regexp.MustCompile(`(?m)^(package[ \t]+)([\p{L}_][\p{L}\p{N}_]*)`)

// DeclaredNamespace returns the name in the first package clause of src.
func DeclaredNamespace(src string) (string, bool) {
	loc := declarationPattern.FindStringSubmatchIndex(src)
	if loc == nil {
		return "", false
	}

	return src[loc[4]:loc[5]], true
}

// RewriteDeclaration replaces the name of the first package clause with
// namespace. Only the first clause is touched. When src has no package clause
// it is returned unchanged with matched=false.
func RewriteDeclaration(src, namespace string) (string, bool) {
	loc := declarationPattern.FindStringSubmatchIndex(src)
	if loc == nil {
		return src, false
	}

	return src[:loc[4]] + namespace + src[loc[5]:], true
}

// declarationLineEnd returns the offset just past the package clause line,
// excluding its newline, or -1 when there is no clause.
func declarationLineEnd(src string) int {
	loc := declarationPattern.FindStringIndex(src)
	if loc == nil {
		return -1
	}

	end := loc[1]
	for end < len(src) && src[end] != '\n' {
		end++
	}

	return end
}
