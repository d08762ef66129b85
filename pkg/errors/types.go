package errors

import (
	"fmt"
)

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// InvalidFieldError represents a field that is present but has an unusable
// value.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (err InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", err.Field, err.Reason)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}
