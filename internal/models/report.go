// file: internal/models/report.go
// version: 1.0.0
// guid: 3b7e1f90-4c2a-4d8e-9a51-7f0c2e6b8d14

package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ReportKind distinguishes lost reports from found reports
type ReportKind string

const (
	KindLost  ReportKind = "lost"
	KindFound ReportKind = "found"
)

// DefaultName is used when a reporter leaves the pet name blank
const DefaultName = "Unknown"

// ParseReportKind normalizes a kind string
func ParseReportKind(s string) (ReportKind, error) {
	switch ReportKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindLost:
		return KindLost, nil
	case KindFound:
		return KindFound, nil
	}
	return "", fmt.Errorf("unknown report kind %q (expected lost or found)", s)
}

// Opposite returns the kind a report of this kind is matched against
func (k ReportKind) Opposite() ReportKind {
	if k == KindFound {
		return KindLost
	}
	return KindFound
}

// Label is the human label used in match notifications
func (k ReportKind) Label() string {
	if k == KindFound {
		return "Found Pet"
	}
	return "Lost Pet"
}

// Age is an animal age in whole years. An Age that is not Valid never
// contributes to age proximity scoring.
type Age struct {
	Years int
	Valid bool
}

// Years builds a valid Age; negative values produce an invalid Age
func Years(n int) Age {
	if n < 0 {
		return Age{}
	}
	return Age{Years: n, Valid: true}
}

// ParseAge parses the leading integer of s, so "3 years" yields 3.
// Anything without a leading integer yields an invalid Age.
func ParseAge(s string) Age {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return Age{}
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return Age{}
	}
	return Years(n)
}

// String renders the age, or an empty string when unknown
func (a Age) String() string {
	if !a.Valid {
		return ""
	}
	return strconv.Itoa(a.Years)
}

// MarshalJSON writes a number, or null when unknown
func (a Age) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(a.Years)), nil
}

// UnmarshalJSON accepts a number, a numeric string or null
func (a *Age) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*a = Age{}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			*a = Age{}
			return nil
		}
		*a = Years(int(math.Trunc(v)))
	case string:
		*a = ParseAge(v)
	default:
		*a = Age{}
	}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for import files
func (a *Age) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode || value.Tag == "!!null" {
		*a = Age{}
		return nil
	}
	*a = ParseAge(value.Value)
	return nil
}

// ReportedAnimal is the shape shared by lost and found reports
type ReportedAnimal struct {
	Species     string `json:"species" yaml:"species"`
	Breed       string `json:"breed" yaml:"breed"`
	Location    string `json:"location" yaml:"location"`
	Age         Age    `json:"age" yaml:"age"`
	Description string `json:"description" yaml:"description"`
}

// Report is a persisted lost or found report
type Report struct {
	ID          string     `json:"id" yaml:"id"`
	Kind        ReportKind `json:"kind" yaml:"kind"`
	Name        string     `json:"name" yaml:"name"`
	Date        string     `json:"date" yaml:"date"` // YYYY-MM-DD the pet went missing or was found
	Coordinates string     `json:"coordinates,omitempty" yaml:"coordinates"`
	ImageURL    string     `json:"image_url,omitempty" yaml:"image_url"`
	CreatedAt   time.Time  `json:"created_at" yaml:"-"`

	ReportedAnimal `yaml:",inline"`
}

// DisplayName returns the pet name or the default placeholder
func (r *Report) DisplayName() string {
	if strings.TrimSpace(r.Name) == "" {
		return DefaultName
	}
	return r.Name
}
