package rewrite

import (
	"go/scanner"
	"go/token"
	"strings"
)

// span is a half-open byte range of src.
type span struct {
	start, end int
}

// literalSpans returns the byte ranges of comments, string literals and rune
// literals in src, in order. Tokenisation errors are ignored: the scanner
// recovers and keeps going, which is enough to keep literals out of reach.
func literalSpans(src string) []span {
	fset := token.NewFileSet()
	file := fset.AddFile("", -1, len(src))

	var sc scanner.Scanner

	sc.Init(file, []byte(src), func(token.Position, string) {}, scanner.ScanComments)

	var spans []span

	for {
		pos, tok, lit := sc.Scan()
		if tok == token.EOF {
			break
		}

		switch tok {
		case token.STRING, token.CHAR, token.COMMENT:
			start := file.Offset(pos)
			spans = append(spans, span{start: start, end: literalEnd(src, start, lit)})
		}
	}

	return spans
}

// literalEnd finds where the literal starting at start ends. The scanner
// strips carriage returns from raw strings and comments, so their length is
// recomputed from src.
func literalEnd(src string, start int, lit string) int {
	rest := src[start:]

	switch {
	case strings.HasPrefix(rest, "`"):
		if i := strings.IndexByte(rest[1:], '`'); i >= 0 {
			return start + i + 2
		}
	case strings.HasPrefix(rest, "//"):
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			return start + i
		}
	case strings.HasPrefix(rest, "/*"):
		if i := strings.Index(rest[2:], "*/"); i >= 0 {
			return start + i + 4
		}
	default:
		return min(start+len(lit), len(src))
	}

	return len(src)
}

// mapCode applies fn to the parts of src outside comments and literals when
// protect is set, or to the whole of src otherwise. fn returns the rewritten
// segment and a count which is summed over segments.
func mapCode(src string, protect bool, fn func(segment string) (string, int)) (string, int) {
	if !protect {
		return fn(src)
	}

	spans := literalSpans(src)
	if len(spans) == 0 {
		return fn(src)
	}

	var (
		sb    strings.Builder
		total int
		last  int
	)

	sb.Grow(len(src))

	for _, sp := range spans {
		if sp.start < last {
			continue
		}

		out, n := fn(src[last:sp.start])
		sb.WriteString(out)
		sb.WriteString(src[sp.start:sp.end])

		total += n
		last = sp.end
	}

	out, n := fn(src[last:])
	sb.WriteString(out)

	return sb.String(), total + n
}
