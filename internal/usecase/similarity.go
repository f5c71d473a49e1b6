package usecase

import fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

// Similarity scores two normalized names on a 0-100 scale using a
// token-sort edit ratio: each string's whitespace tokens are sorted and
// rejoined before the edit-distance ratio is computed, so word order never
// affects the score. Symmetric; 100 only when the sorted-token strings are
// identical. Thresholds elsewhere in this package are tuned for these
// edit-ratio semantics.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return float64(fuzzy.TokenSortRatio(a, b))
}
