package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/requalify/pkg/ownership"
)

// QualifyStats counts the references rewritten by a Qualifier.
type QualifyStats struct {
	Total    int            `json:"total"               yaml:"total"`
	ByPrefix map[string]int `json:"by_prefix,omitempty" yaml:"by_prefix,omitempty"`
}

// QualifyOption configures a Qualifier.
type QualifyOption func(*Qualifier)

// WithSkipLiterals leaves comments, string literals and rune literals
// untouched. Off by default: plain qualification rewrites matching text
// wherever it occurs.
func WithSkipLiterals(skip bool) QualifyOption {
	return func(q *Qualifier) {
		q.skipLiterals = skip
	}
}

// Qualifier rewrites bare identifiers into prefix-qualified references.
//
// A token is a maximal run of letters, digits and underscores. A token owned
// by the table becomes prefix.token unless it directly follows a dot, which
// covers both references that are already qualified and field selectors.
// An identifier owned by several prefixes is qualified with the first one in
// table order.
type Qualifier struct {
	owner        map[string]string
	skipLiterals bool
}

// NewQualifier builds a qualifier from a snapshot of table. Later changes to
// table are not observed.
func NewQualifier(table *ownership.Table, opts ...QualifyOption) *Qualifier {
	q := &Qualifier{owner: make(map[string]string)}

	for _, prefix := range table.Prefixes() {
		for _, ident := range table.Identifiers(prefix) {
			if _, taken := q.owner[ident]; !taken {
				q.owner[ident] = prefix
			}
		}
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Qualify rewrites every unqualified owned token in src.
func (q *Qualifier) Qualify(src string) (string, QualifyStats) {
	stats := QualifyStats{ByPrefix: make(map[string]int)}
	if len(q.owner) == 0 {
		return src, stats
	}

	out, total := mapCode(src, q.skipLiterals, func(segment string) (string, int) {
		return q.qualifySegment(segment, stats.ByPrefix)
	})

	stats.Total = total

	return out, stats
}

func (q *Qualifier) qualifySegment(seg string, counts map[string]int) (string, int) {
	var (
		sb      strings.Builder
		written int
		n       int
	)

	for i := 0; i < len(seg); {
		r, size := utf8.DecodeRuneInString(seg[i:])
		if !isIdentRune(r) {
			i += size

			continue
		}

		start := i
		for i < len(seg) {
			r, size = utf8.DecodeRuneInString(seg[i:])
			if !isIdentRune(r) {
				break
			}

			i += size
		}

		if followsSelector(seg, start) {
			continue
		}

		prefix, ok := q.owner[seg[start:i]]
		if !ok {
			continue
		}

		if n == 0 {
			sb.Grow(len(seg) + len(prefix) + 1)
		}

		sb.WriteString(seg[written:start])
		sb.WriteString(prefix)
		sb.WriteByte('.')
		sb.WriteString(seg[start:i])

		written = i
		n++
		counts[prefix]++
	}

	if n == 0 {
		return seg, 0
	}

	sb.WriteString(seg[written:])

	return sb.String(), n
}

// followsSelector reports whether the token at start is the right-hand side
// of a dot. A variadic ellipsis does not count.
func followsSelector(seg string, start int) bool {
	if start == 0 || seg[start-1] != '.' {
		return false
	}

	return start < 3 || seg[start-3:start] != "..."
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
