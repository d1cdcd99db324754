// file: internal/matcher/fuzzy_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8901-bcde-f23456789012

package matcher

import (
	"testing"

	"github.com/jdfalk/petmatch/internal/models"
)

func TestScoreQuery(t *testing.T) {
	tests := []struct {
		query, target string
		minExpected   int
		maxExpected   int
	}{
		// Exact match
		{"Beagle", "Beagle", 100, 100},
		// Case insensitive exact
		{"beagle", "BEAGLE", 100, 100},
		// Prefix
		{"Lab", "Labrador Retriever", 90, 90},
		// Word start
		{"Retr", "Labrador Retriever", 80, 89},
		// Subsequence only
		{"lbrdr", "Labrador", 40, 50},
		// No match
		{"xyzzy", "Labrador", 0, 0},
		// Empty
		{"", "Labrador", 0, 0},
		{"Lab", "", 0, 0},
	}
	for _, tt := range tests {
		score := ScoreQuery(tt.query, tt.target)
		if score < tt.minExpected || score > tt.maxExpected {
			t.Errorf("ScoreQuery(%q, %q) = %d, want [%d, %d]",
				tt.query, tt.target, score, tt.minExpected, tt.maxExpected)
		}
	}
}

func TestScoreQuery_Ranking(t *testing.T) {
	query := "husky"
	exact := ScoreQuery(query, "Husky")
	prefix := ScoreQuery(query, "Husky Mix")
	subsequence := ScoreQuery(query, "Hush puppy key")

	if exact <= prefix {
		t.Errorf("exact (%d) should beat prefix (%d)", exact, prefix)
	}
	if prefix <= subsequence {
		t.Errorf("prefix (%d) should beat subsequence (%d)", prefix, subsequence)
	}
}

func searchFixture() []models.Report {
	return []models.Report{
		{Name: "Max", ReportedAnimal: models.ReportedAnimal{Species: "Dog", Breed: "Labrador", Location: "1 A St, Riverside, CA"}},
		{Name: "Luna", ReportedAnimal: models.ReportedAnimal{Species: "Cat", Breed: "Persian", Location: "9 B Rd, Lahore, PK"}},
		{Name: "Maxine", ReportedAnimal: models.ReportedAnimal{Species: "Dog", Breed: "Beagle", Location: "Gulberg, Lahore, PK"}},
	}
}

func TestSearchReports(t *testing.T) {
	reports := searchFixture()

	results := SearchReports("luna", reports, 40)
	if len(results) == 0 || results[0].Index != 1 || results[0].Score != 100 {
		t.Fatalf("expected Luna first with score 100, got %+v", results)
	}

	results = SearchReports("persian", reports, 40)
	if len(results) != 1 || results[0].Index != 1 {
		t.Errorf("expected only Luna for breed query, got %+v", results)
	}

	results = SearchReports("max", reports, 40)
	if len(results) != 2 {
		t.Fatalf("expected Max and Maxine, got %+v", results)
	}
	if results[0].Index != 0 {
		t.Errorf("expected exact name first, got index %d", results[0].Index)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted: score[%d]=%d > score[%d]=%d",
				i, results[i].Score, i-1, results[i-1].Score)
		}
	}
}

func TestSearchReports_EmptyQuery(t *testing.T) {
	results := SearchReports("   ", searchFixture(), 0)
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", results)
	}
}

func TestSearchReports_MinScore(t *testing.T) {
	results := SearchReports("lahore", searchFixture(), 95)
	if len(results) != 0 {
		t.Errorf("expected no results above 95 for location substring, got %+v", results)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Hello, World!", "hello world"},
		{"  spaces  ", "spaces"},
		{"it's a test", "its a test"},
	}
	for _, tt := range tests {
		got := normalize(tt.input)
		if got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
