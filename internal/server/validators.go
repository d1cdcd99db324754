// file: internal/server/validators.go
// version: 2.0.1
// guid: 9b0c1d2e-3f4a-5b6c-7d8e-9f0a1b2c3d4e

package server

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jdfalk/petmatch/internal/models"
)

// ValidationError represents a validation error with code
type ValidationError struct {
	Field   string
	Message string
	Code    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	// free text, a comma, then a two-letter region code. \s is ASCII
	// whitespace only, so a no-break space is rejected.
	locationRegex = regexp.MustCompile(`^[A-Za-z0-9\s,.]+,\s*[A-Z]{2}$`)
	dateRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidLocation reports whether s looks like "City, Area, ST"
func ValidLocation(s string) bool {
	return locationRegex.MatchString(s)
}

// ValidISODate reports whether s is a real calendar date written YYYY-MM-DD
func ValidISODate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Message: field + " is required",
			Code:    strings.ToUpper(field) + "_REQUIRED",
		}
	}
	return nil
}

// ValidateReport checks a report before it is stored. Every field except
// the name is required.
func ValidateReport(r *models.Report) error {
	if r == nil {
		return ValidationError{Field: "report", Message: "report is required", Code: "REPORT_REQUIRED"}
	}
	if _, err := models.ParseReportKind(string(r.Kind)); err != nil {
		return ValidationError{
			Field:   "kind",
			Message: "kind must be one of: [lost found]",
			Code:    "KIND_INVALID_VALUE",
		}
	}
	for _, f := range []struct{ name, value string }{
		{"species", r.Species},
		{"breed", r.Breed},
		{"location", r.Location},
		{"date", r.Date},
		{"description", r.Description},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if !r.Age.Valid {
		return ValidationError{Field: "age", Message: "age is required", Code: "AGE_REQUIRED"}
	}
	if r.Age.Years <= 0 {
		return ValidationError{Field: "age", Message: "age must be a positive number", Code: "AGE_TOO_SMALL"}
	}
	if !ValidLocation(r.Location) {
		return ValidationError{
			Field:   "location",
			Message: "location must look like \"City, Area, ST\" ending in a two-letter region code",
			Code:    "LOCATION_INVALID",
		}
	}
	if !ValidISODate(r.Date) {
		return ValidationError{
			Field:   "date",
			Message: "date must be a valid YYYY-MM-DD date",
			Code:    "DATE_INVALID",
		}
	}
	if r.ImageURL != "" {
		if err := ValidateURL(r.ImageURL); err != nil {
			return err
		}
	}
	return nil
}

// ValidateID validates that an ID is non-empty and has reasonable format
func ValidateID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ValidationError{
			Field:   "id",
			Message: "id is required",
			Code:    "ID_REQUIRED",
		}
	}
	if len(id) > 256 {
		return ValidationError{
			Field:   "id",
			Message: "id is too long",
			Code:    "ID_TOO_LONG",
		}
	}
	return nil
}

// ValidateURL validates that a string is a valid URL
func ValidateURL(url string) error {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return ValidationError{
			Field:   "image_url",
			Message: "image_url must start with http:// or https://",
			Code:    "URL_INVALID",
		}
	}
	if len(url) > 2048 {
		return ValidationError{
			Field:   "image_url",
			Message: "image_url is too long",
			Code:    "URL_TOO_LONG",
		}
	}
	return nil
}

var registerValidatorsOnce sync.Once

// RegisterBindingValidators installs the pet_location and iso_date tags on
// gin's validator so request DTOs can use them in binding tags.
func RegisterBindingValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Report errors under the JSON field names clients send
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("pet_location", func(fl validator.FieldLevel) bool {
			return ValidLocation(fl.Field().String())
		})
		_ = v.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
			return ValidISODate(fl.Field().String())
		})
	})
}

// bindingFieldError converts the first validator failure into a ValidationError
func bindingFieldError(err error) (ValidationError, bool) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return ValidationError{}, false
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	msg := fmt.Sprintf("failed %q check", fe.Tag())
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: [%s]", field, fe.Param())
	case "pet_location":
		msg = "location must look like \"City, Area, ST\" ending in a two-letter region code"
	case "iso_date":
		msg = "date must be a valid YYYY-MM-DD date"
	}
	return ValidationError{
		Field:   field,
		Message: msg,
		Code:    strings.ToUpper(field) + "_INVALID",
	}, true
}
