package varstore

import (
	"sort"

	"github.com/agext/levenshtein"
)

// NameSuggestion returns the candidate closest to given if it is within a
// small edit distance, or "" otherwise. candidates is sorted in place.
func NameSuggestion(given string, candidates []string) string {
	sort.Strings(candidates)
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein.Distance(given, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
