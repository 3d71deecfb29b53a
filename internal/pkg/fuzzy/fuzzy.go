// Package fuzzy resolves free-text tokens to canonical names by edit distance
package fuzzy

import "strings"

// DefaultThreshold is the largest edit distance accepted when none is given
const DefaultThreshold = 3

// Alias maps a lower-cased phrase to a canonical value
type Alias struct {
	Phrase string
	Target string
}

// Distance returns the Levenshtein distance between a and b, counting
// insert, delete and substitute as cost 1. It compares runes, not bytes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Closest returns the candidate nearest to input and its distance. Ties go to
// the earliest candidate. The comparison is case-insensitive on a trimmed input.
// It returns -1 when there are no candidates.
func Closest(input string, candidates []string) (string, int) {
	input = strings.ToLower(strings.TrimSpace(input))
	best, bestDist := "", -1
	for _, c := range candidates {
		d := Distance(input, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// Match resolves input to one of candidates. An exact case-insensitive match
// wins regardless of threshold. Otherwise the nearest candidate is returned
// when its distance is within threshold, else the empty string. A threshold
// of zero or less means DefaultThreshold.
func Match(input string, candidates []string, threshold int) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	for _, c := range candidates {
		if strings.EqualFold(c, input) {
			return c
		}
	}
	best, d := Closest(input, candidates)
	if d < 0 || d > threshold {
		return ""
	}
	return best
}

// MatchAlias resolves input against alias phrases and returns the mapped
// target. Exact phrase matches short-circuit.
func MatchAlias(input string, aliases []Alias, threshold int) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if target, ok := Lookup(input, aliases); ok {
		return target
	}
	bestTarget, bestDist := "", -1
	for _, a := range aliases {
		d := Distance(input, a.Phrase)
		if bestDist < 0 || d < bestDist {
			bestTarget, bestDist = a.Target, d
		}
	}
	if bestDist < 0 || bestDist > threshold {
		return ""
	}
	return bestTarget
}

// Lookup returns the target of an exact (case-insensitive) alias phrase
func Lookup(input string, aliases []Alias) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, a := range aliases {
		if a.Phrase == input {
			return a.Target, true
		}
	}
	return "", false
}
