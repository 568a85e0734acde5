package manifest

import "fmt"

// maxSuggestDistance is the largest edit distance still offered as a hint.
const maxSuggestDistance = 2

// hint formats a "did you mean" suffix for name, or returns "" when no
// candidate is close enough.
func hint(name string, candidates []string) string {
	best := suggest(name, candidates)
	if best == "" {
		return ""
	}

	return fmt.Sprintf(" (did you mean %q?)", best)
}

// suggest returns the candidate closest to name within maxSuggestDistance.
// Ties go to the earliest candidate.
func suggest(name string, candidates []string) string {
	var (
		best     string
		bestDist = maxSuggestDistance + 1
		scratch  []int
	)

	for _, candidate := range candidates {
		var dist int

		dist, scratch = distance(name, candidate, scratch)
		if dist < bestDist {
			best, bestDist = candidate, dist
		}
	}

	return best
}

// distance computes the Levenshtein distance between a and b over runes,
// keeping a single column. The column is returned for reuse.
func distance(a, b string, column []int) (int, []int) {
	s1, s2 := []rune(a), []rune(b)

	if len(s2) == 0 {
		return len(s1), column
	}

	if cap(column) < len(s1)+1 {
		column = make([]int, len(s1)+1)
	}

	column = column[:len(s1)+1]
	for i := range column {
		column[i] = i
	}

	for col, r2 := range s2 {
		column[0] = col + 1
		diag := col

		for row, r1 := range s1 {
			old := column[row+1]

			cost := 1
			if r1 == r2 {
				cost = 0
			}

			column[row+1] = min(column[row+1]+1, column[row]+1, diag+cost)
			diag = old
		}
	}

	return column[len(s1)], column
}
