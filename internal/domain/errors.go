package domain

import (
	"errors"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a request or entity fails validation.
	// *ValidationErrors matches it through errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier is malformed.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// FieldError describes a single field violation. Field is the name used on
// the wire (JSON key, query parameter or path parameter).
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every field violation found in one payload.
type ValidationErrors struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationErrors holding a single violation.
func NewValidationError(field, message string) *ValidationErrors {
	return &ValidationErrors{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a violation.
func (e *ValidationErrors) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any violation was recorded.
func (e *ValidationErrors) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationErrors) Error() string {
	if !e.HasErrors() {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationErrors.
func (e *ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}
