// file: internal/matcher/matcher.go
// version: 2.0.1
// guid: 1f2a3b4c-5d6e-7f8a-9b0c-1d2e3f4a5b6c

package matcher

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jdfalk/petmatch/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Term weights. They sum to 100.
const (
	SpeciesWeight     = 30.0
	BreedWeight       = 25.0
	LocationWeight    = 20.0
	AgeWeight         = 15.0
	DescriptionWeight = 10.0
)

// Threshold is the minimum score a reference needs to be reported as a match
const Threshold = 60.0

// maxAgeGap is the age difference (years) at which age credit reaches zero
const maxAgeGap = 2

// Breakdown holds the contribution of each weighted term
type Breakdown struct {
	Species     float64 `json:"species"`
	Breed       float64 `json:"breed"`
	Location    float64 `json:"location"`
	Age         float64 `json:"age"`
	Description float64 `json:"description"`
}

// Total sums the terms
func (b Breakdown) Total() float64 {
	return b.Species + b.Breed + b.Location + b.Age + b.Description
}

// MatchResult is one scored reference
type MatchResult struct {
	Index     int                   `json:"index"` // position in the reference slice
	Candidate models.ReportedAnimal `json:"candidate"`
	Score     float64               `json:"score"` // 0-100
	Breakdown Breakdown             `json:"breakdown"`
}

// FindMatches scores every reference against newReport and returns the ones
// scoring at least Threshold, best first. Equal scores keep reference order.
func FindMatches(newReport models.ReportedAnimal, refs []models.ReportedAnimal) []MatchResult {
	results := make([]MatchResult, 0)
	for i, ref := range refs {
		m := Score(newReport, ref)
		if m.Score < Threshold {
			continue
		}
		m.Index = i
		results = append(results, m)
	}
	slices.SortStableFunc(results, func(a, b MatchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return results
}

// Score computes the unfiltered similarity of ref to newReport
func Score(newReport, ref models.ReportedAnimal) MatchResult {
	// A Caser keeps state and is not safe for concurrent use, so each call
	// builds its own.
	lower := cases.Lower(language.Und)

	var b Breakdown
	if lower.String(ref.Species) == lower.String(newReport.Species) {
		b.Species = SpeciesWeight
	}
	if lower.String(ref.Breed) == lower.String(newReport.Breed) {
		b.Breed = BreedWeight
	}
	if LocationKey(ref.Location) == LocationKey(newReport.Location) {
		b.Location = LocationWeight
	}
	b.Age = ageProximity(ref.Age, newReport.Age)
	b.Description = DescriptionWeight * Similarity(ref.Description, newReport.Description)

	return MatchResult{Candidate: ref, Score: b.Total(), Breakdown: b}
}

// LocationKey reduces a location label to its last two comma-separated
// segments, trimmed and lower-cased: "123 Main St, Lahore, PK" -> "lahore, pk".
func LocationKey(label string) string {
	lower := cases.Lower(language.Und)
	parts := strings.Split(label, ",")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	for i, p := range parts {
		parts[i] = lower.String(strings.TrimSpace(p))
	}
	return strings.Join(parts, ", ")
}

// ageProximity gives full credit at equal ages, falling linearly to zero at maxAgeGap
func ageProximity(a, b models.Age) float64 {
	if !a.Valid || !b.Valid {
		return 0
	}
	d := a.Years - b.Years
	if d < 0 {
		d = -d
	}
	if d > maxAgeGap {
		return 0
	}
	return AgeWeight * (1 - float64(d)/maxAgeGap)
}

// Similarity is a bag-of-characters overlap ratio in [0,1]: the number of
// characters of the shorter string that occur anywhere in the longer one,
// divided by the longer string's length. Repeated characters count each time.
// When the strings are the same length, a is treated as the shorter one.
func Similarity(a, b string) float64 {
	lower := cases.Lower(language.Und)
	s1 := []rune(lower.String(a))
	s2 := []rune(lower.String(b))

	longer, shorter := s2, s1
	if len(s1) > len(s2) {
		longer, shorter = s1, s2
	}
	if len(longer) == 0 {
		return 1.0
	}

	present := make(map[rune]struct{}, len(longer))
	for _, r := range longer {
		present[r] = struct{}{}
	}
	matching := 0
	for _, r := range shorter {
		if _, ok := present[r]; ok {
			matching++
		}
	}
	return float64(matching) / float64(len(longer))
}
