package rewrite

import (
	"regexp"

	"github.com/Sumatoshi-tech/requalify/pkg/ownership"
)

// NormalizeOptions selects what Normalize repairs.
type NormalizeOptions struct {
	// Namespace is the package name the file should declare. Empty keeps the
	// current declaration. When the effective namespace names a table prefix,
	// references qualified with it are stripped.
	Namespace string
	// Table supplies the prefixes whose repeated qualification is collapsed.
	Table *ownership.Table
	// Fold lists extra prefixes whose qualification is stripped.
	Fold []string
	// StaleImports is the import group a previous run injected.
	StaleImports []string
	// SelfImport is the import path of the namespace folded into the file.
	SelfImport string
	// SkipLiterals leaves comments and literals untouched.
	SkipLiterals bool
}

// NormalizeReport records what Normalize changed.
type NormalizeReport struct {
	DeclarationMatched  bool     `json:"declaration_matched"   yaml:"declaration_matched"`
	Collapsed           int      `json:"collapsed"             yaml:"collapsed"`
	Stripped            int      `json:"stripped"              yaml:"stripped"`
	Folded              []string `json:"folded,omitempty"      yaml:"folded,omitempty"`
	StaleImportsRemoved bool     `json:"stale_imports_removed" yaml:"stale_imports_removed"`
	SelfImportsRemoved  int      `json:"self_imports_removed"  yaml:"self_imports_removed"`
}

// Normalize restores single qualification on a file that went through
// qualification more than once. Steps run in a fixed order: declaration,
// collapse of repeated prefixes, stripping of folded prefixes, removal of
// stale imports. A step that matches nothing is skipped silently.
func Normalize(src string, opts NormalizeOptions) (string, NormalizeReport) {
	var rep NormalizeReport

	namespace := opts.Namespace
	if namespace != "" {
		src, rep.DeclarationMatched = RewriteDeclaration(src, namespace)
	} else {
		namespace, rep.DeclarationMatched = DeclaredNamespace(src)
	}

	src, rep.Collapsed = mapCode(src, opts.SkipLiterals, func(seg string) (string, int) {
		return CollapseQualifiers(seg, opts.Table.Prefixes()...)
	})

	rep.Folded = foldPrefixes(namespace, opts)
	for _, prefix := range rep.Folded {
		var n int

		src, n = mapCode(src, opts.SkipLiterals, func(seg string) (string, int) {
			return StripQualifier(seg, prefix)
		})
		rep.Stripped += n
	}

	src, rep.StaleImportsRemoved = RemoveImportSignature(src, opts.StaleImports)
	src, rep.SelfImportsRemoved = RemoveImport(src, opts.SelfImport)

	return src, rep
}

// CollapseQualifiers rewrites chains such as p.p.X and p.p.p.X to p.X for
// each prefix. It returns the number of chains collapsed.
func CollapseQualifiers(src string, prefixes ...string) (string, int) {
	total := 0

	for _, prefix := range prefixes {
		re := regexp.MustCompile(boundary + `(?:` + regexp.QuoteMeta(prefix) + `\.){2,}`)

		n := len(re.FindAllStringIndex(src, -1))
		if n == 0 {
			continue
		}

		src = re.ReplaceAllString(src, "${1}"+prefix+".")
		total += n
	}

	return src, total
}

// StripQualifier rewrites prefix.X to X wherever prefix stands as its own
// token. It returns the number of references stripped.
func StripQualifier(src, prefix string) (string, int) {
	re := regexp.MustCompile(boundary + regexp.QuoteMeta(prefix) + `\.([\p{L}_])`)

	n := len(re.FindAllStringIndex(src, -1))
	if n == 0 {
		return src, 0
	}

	return re.ReplaceAllString(src, "${1}${2}"), n
}

// boundary matches the start of text or one character that can neither be
// part of an identifier nor a selector dot. It is captured as group 1.
const boundary = `(^|[^\p{L}\p{N}_.])`

// foldPrefixes lists the prefixes to strip: the file's effective namespace
// when the table owns it, then opts.Fold.
func foldPrefixes(namespace string, opts NormalizeOptions) []string {
	var out []string

	seen := make(map[string]struct{})
	add := func(p string) {
		if p == "" {
			return
		}

		if _, ok := seen[p]; ok {
			return
		}

		seen[p] = struct{}{}
		out = append(out, p)
	}

	if opts.Table.Has(namespace) {
		add(namespace)
	}

	for _, p := range opts.Fold {
		add(p)
	}

	return out
}
