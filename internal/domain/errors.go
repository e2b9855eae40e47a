// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidGrade is returned when a review grade is outside Again..Easy.
	ErrInvalidGrade = errors.New("invalid review grade")

	// ErrInvalidState is returned when a card state value is not a known lifecycle phase.
	ErrInvalidState = errors.New("invalid card state")

	// ErrInvalidFamiliarity is returned when a familiarity tier is outside 1..5.
	ErrInvalidFamiliarity = errors.New("invalid familiarity")

	// ErrInvalidCharacter is returned when a character is not exactly one code point.
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a single invalid field. It wraps a sentinel so callers
// can match with errors.Is while still getting the field-level message.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel, defaulting to ErrValidation.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
