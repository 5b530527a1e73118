package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	opkiterrors "github.com/kbukum/opkit/errors"
)

// Validator collects field violations for hand-written checks.
type Validator struct {
	fields map[string]opkiterrors.FieldViolation
	order  []string
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{fields: make(map[string]opkiterrors.FieldViolation)}
}

// AddError records a violation. Only the first violation per field is kept.
func (v *Validator) AddError(field, message string, value any) {
	if _, exists := v.fields[field]; exists {
		return
	}
	v.fields[field] = opkiterrors.FieldViolation{Message: message, Value: value}
	v.order = append(v.order, field)
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.fields) > 0
}

// Fields returns the names of the rejected fields in the order they failed.
func (v *Validator) Fields() []string {
	return slices.Clone(v.order)
}

// Validate returns a *errors.ValidationError when any check failed.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	return opkiterrors.NewValidationError(v.fields)
}

// Required checks that a string is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required", value)
	}
	return v
}

// RequiredUUID checks that a string is a valid non-nil UUID.
func (v *Validator) RequiredUUID(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required", value)
		return v
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		v.AddError(field, "must be a valid UUID", value)
		return v
	}
	if parsed == uuid.Nil {
		v.AddError(field, "must not be empty", value)
	}
	return v
}

// MinLength checks that a string has at least minLen characters.
func (v *Validator) MinLength(field, value string, minLen int) *Validator {
	if len(value) < minLen {
		v.AddError(field, fmt.Sprintf("must be at least %d characters", minLen), value)
	}
	return v
}

// MaxLength checks that a string has at most maxLen characters.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen), value)
	}
	return v
}

// Pattern checks that a non-empty string matches pattern.
func (v *Validator) Pattern(field, value string, pattern *regexp.Regexp) *Validator {
	if value != "" && !pattern.MatchString(value) {
		v.AddError(field, "does not match required format", value)
	}
	return v
}

// OneOf checks that a non-empty value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "), value)
	}
	return v
}

// Custom records message for field unless condition holds.
func (v *Validator) Custom(condition bool, field, message string, value any) *Validator {
	if !condition {
		v.AddError(field, message, value)
	}
	return v
}

// ValidateUUID parses a required UUID, returning a validation error for
// blank or malformed input.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	if err := New().RequiredUUID(field, value).Validate(); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(value), nil
}
