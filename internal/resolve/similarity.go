package resolve

import (
	"sort"
)

// DefaultThreshold is the largest distance at which two keys count as similar.
const DefaultThreshold = 0.3

// sharedPrefixLen is how many leading characters two keys must share to take
// the positional comparison instead of full edit distance.
const sharedPrefixLen = 3

// Distance scores two keys in [0, 1]: 0 means identical, 1 means unrelated.
//
// Keys sharing a 3-character prefix are compared position by position:
// mismatches in the overlapping span plus the length difference, over the
// longer length. Other pairs use Levenshtein distance over the longer length.
// Both branches depend only on the unordered pair, so Distance(a, b) equals
// Distance(b, a).
func Distance(a, b string) float64 {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 1
	}

	longest := max(len(ra), len(rb))

	if sharesPrefix(ra, rb) {
		overlap := min(len(ra), len(rb))
		mismatches := 0
		for i := 0; i < overlap; i++ {
			if ra[i] != rb[i] {
				mismatches++
			}
		}
		return float64(mismatches+longest-overlap) / float64(longest)
	}

	return float64(levenshtein(ra, rb)) / float64(longest)
}

func sharesPrefix(a, b []rune) bool {
	if len(a) < sharedPrefixLen || len(b) < sharedPrefixLen {
		return false
	}
	for i := 0; i < sharedPrefixLen; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// levenshtein is the classic unit-cost edit distance, two rows at a time.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Match is one candidate found by RankSimilar.
type Match[V any] struct {
	Key      string  `json:"key"`
	Distance float64 `json:"distance"`
	Value    V       `json:"value"`
}

// RankSimilar returns every entry of universe within threshold of key,
// closest first, never including key itself. Ties break on key so the result
// does not depend on map iteration order.
func RankSimilar[V any](key string, universe map[string]V, threshold float64) []Match[V] {
	var matches []Match[V]
	for k, v := range universe {
		if k == key {
			continue
		}
		d := Distance(key, k)
		if d <= threshold {
			matches = append(matches, Match[V]{Key: k, Distance: d, Value: v})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Key < matches[j].Key
	})
	return matches
}

// FindSimilar returns the values of universe whose keys are within
// DefaultThreshold of key, most similar first.
func FindSimilar[V any](key string, universe map[string]V) []V {
	matches := RankSimilar(key, universe, DefaultThreshold)
	out := make([]V, len(matches))
	for i, m := range matches {
		out[i] = m.Value
	}
	return out
}
