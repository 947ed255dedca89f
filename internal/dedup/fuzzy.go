package dedup

import "strings"

// DefaultFuzzyThreshold is the Jaccard similarity at which two normalized
// organization names count as the same organization.
const DefaultFuzzyThreshold = 0.85

// Jaccard returns the token-set similarity of two normalized names.
func Jaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}

	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.Fields(s) {
		out[f] = true
	}
	return out
}
