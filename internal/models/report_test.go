// file: internal/models/report_test.go
// version: 1.0.0
// guid: 6c2d8e14-0b7a-4f3e-a9d5-1e8c7b2f6a03

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseReportKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ReportKind
		wantErr bool
	}{
		{"lost", KindLost, false},
		{" Found ", KindFound, false},
		{"LOST", KindLost, false},
		{"stray", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseReportKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestReportKindOppositeAndLabel(t *testing.T) {
	assert.Equal(t, KindFound, KindLost.Opposite())
	assert.Equal(t, KindLost, KindFound.Opposite())
	assert.Equal(t, "Lost Pet", KindLost.Label())
	assert.Equal(t, "Found Pet", KindFound.Label())
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   string
		want Age
	}{
		{"3", Years(3)},
		{" 12 ", Years(12)},
		{"3 years", Years(3)},
		{"0", Years(0)},
		{"+4", Years(4)},
		{"-1", Age{}},
		{"", Age{}},
		{"abc", Age{}},
		{"about 3", Age{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAge(tt.in), "ParseAge(%q)", tt.in)
	}
}

func TestAgeString(t *testing.T) {
	assert.Equal(t, "5", Years(5).String())
	assert.Equal(t, "", Age{}.String())
}

func TestAgeJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Age `json:"a"`
		B Age `json:"b"`
	}{Years(2), Age{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2,"b":null}`, string(out))

	tests := []struct {
		in   string
		want Age
	}{
		{`4`, Years(4)},
		{`4.9`, Years(4)},
		{`"7"`, Years(7)},
		{`"7 months"`, Years(7)},
		{`null`, Age{}},
		{`"old"`, Age{}},
		{`-2`, Age{}},
		{`true`, Age{}},
	}
	for _, tt := range tests {
		var a Age
		require.NoError(t, json.Unmarshal([]byte(tt.in), &a), tt.in)
		assert.Equal(t, tt.want, a, tt.in)
	}

	var a Age
	assert.Error(t, json.Unmarshal([]byte(`{`), &a))
}

func TestReportJSONFlattensAnimal(t *testing.T) {
	r := Report{
		ID:   "01J0000000000000000000000A",
		Kind: KindLost,
		Name: "Max",
		Date: "2025-05-20",
		ReportedAnimal: ReportedAnimal{
			Species:  "Dog",
			Breed:    "Beagle",
			Location: "Canal Rd, Lahore, PK",
			Age:      Years(3),
		},
	}
	out, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "Dog", m["species"])
	assert.Equal(t, float64(3), m["age"])
	assert.NotContains(t, m, "coordinates")
	assert.NotContains(t, m, "ReportedAnimal")
}

func TestReportYAML(t *testing.T) {
	doc := `
- kind: found
  species: Cat
  breed: Siamese
  location: Gulberg, Lahore, PK
  age: 2
  description: cream coat
  date: "2025-06-01"
- kind: lost
  name: Bella
  species: Dog
  breed: Poodle
  location: Clifton, Karachi, SD
  age: ~
  date: "2025-06-02"
`
	var reports []Report
	require.NoError(t, yaml.Unmarshal([]byte(doc), &reports))
	require.Len(t, reports, 2)

	assert.Equal(t, KindFound, reports[0].Kind)
	assert.Equal(t, "Siamese", reports[0].Breed)
	assert.Equal(t, Years(2), reports[0].Age)
	assert.Equal(t, "cream coat", reports[0].Description)

	assert.Equal(t, "Bella", reports[1].Name)
	assert.False(t, reports[1].Age.Valid)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Max", (&Report{Name: "Max"}).DisplayName())
	assert.Equal(t, DefaultName, (&Report{Name: "  "}).DisplayName())
	assert.Equal(t, DefaultName, (&Report{}).DisplayName())
}
