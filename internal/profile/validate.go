package profile

import (
	"fmt"
	"strings"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

// AgeBounds is the accepted child-age range, inclusive.
type AgeBounds struct {
	Min, Max int
}

// DefaultAgeBounds covers childhood.
var DefaultAgeBounds = AgeBounds{Min: 0, Max: 18}

// FieldError reports one invalid form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the form before it is sent. The first problem wins.
func Validate(f domain.ProfileFields, b AgeBounds) error {
	if strings.TrimSpace(f.ChildName) == "" {
		return &FieldError{Field: "childName", Message: "child's name is required"}
	}
	if f.ChildAge < b.Min || f.ChildAge > b.Max {
		return &FieldError{Field: "childAge", Message: fmt.Sprintf("age must be between %d and %d", b.Min, b.Max)}
	}
	if f.PreferredAgeMin != 0 && (f.PreferredAgeMin < b.Min || f.PreferredAgeMin > b.Max) {
		return &FieldError{Field: "preferredAgeMin", Message: fmt.Sprintf("must be between %d and %d", b.Min, b.Max)}
	}
	if f.PreferredAgeMax != 0 && (f.PreferredAgeMax < b.Min || f.PreferredAgeMax > b.Max) {
		return &FieldError{Field: "preferredAgeMax", Message: fmt.Sprintf("must be between %d and %d", b.Min, b.Max)}
	}
	if f.PreferredAgeMin != 0 && f.PreferredAgeMax != 0 && f.PreferredAgeMin > f.PreferredAgeMax {
		return &FieldError{Field: "preferredAgeMin", Message: "minimum age is above maximum"}
	}
	return nil
}
