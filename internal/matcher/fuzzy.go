// file: internal/matcher/fuzzy.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package matcher

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/jdfalk/petmatch/internal/models"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SearchResult holds a scored search hit.
type SearchResult struct {
	Index int // index into the original slice
	Score int // 0-100, higher is better
}

// ScoreQuery scores how well query matches target. Returns 0-100.
func ScoreQuery(query, target string) int {
	q := normalize(query)
	t := normalize(target)
	if q == "" || t == "" {
		return 0
	}

	if q == t {
		return 100
	}

	score := 0

	if strings.HasPrefix(t, q) {
		score = max(score, 90)
	}

	for _, w := range strings.Fields(t) {
		if strings.HasPrefix(w, q) {
			score = max(score, 80)
			break
		}
	}

	if strings.Contains(t, q) {
		// shorter targets are more specific
		ratio := float64(len(q)) / float64(len(t))
		score = max(score, 60+int(ratio*25))
	}

	// Subsequence match ("lbrdr" in "labrador"), penalized by the number of
	// characters that had to be skipped.
	if dist := fuzzy.RankMatchNormalizedFold(q, t); dist >= 0 {
		score = max(score, max(0, 50-dist))
	}

	return score
}

// SearchReports ranks reports against a free-text query over name, species,
// breed and location. Only hits scoring at least minScore are returned.
func SearchReports(query string, reports []models.Report, minScore int) []SearchResult {
	results := make([]SearchResult, 0)
	if strings.TrimSpace(query) == "" {
		return results
	}
	for i := range reports {
		r := &reports[i]
		best := 0
		for _, field := range []string{r.Name, r.Species, r.Breed, r.Location} {
			best = max(best, ScoreQuery(query, field))
		}
		if best >= minScore && best > 0 {
			results = append(results, SearchResult{Index: i, Score: best})
		}
	}
	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return results
}

// normalize lowercases and strips non-alphanumeric characters except spaces.
func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
