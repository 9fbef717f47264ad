package config

import (
	"fmt"
)

// ParseError represents a failure to decode the YAML document.
type ParseError struct {
	parent error
}

func errParse(parent error) error {
	if parent == nil {
		return nil
	}

	return ParseError{parent: parent}
}

// Unwrap returns the underlying decoding error.
func (e ParseError) Unwrap() error {
	return e.parent
}

// Error returns a string representation of the parse error.
func (e ParseError) Error() string {
	return fmt.Sprintf("failed to parse config: %s", e.parent)
}

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	// Field is the YAML name of the invalid field.
	Field string
	parent error
}

func errValidation(field string, parent error) error {
	return ValidationError{Field: field, parent: parent}
}

// Unwrap returns the underlying error.
func (e ValidationError) Unwrap() error {
	return e.parent
}

// Error returns a string representation of the validation error.
func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid config field %s: %s", e.Field, e.parent)
}
