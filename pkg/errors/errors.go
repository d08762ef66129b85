package errors

import (
	"errors"
	"fmt"
)

// New returns an error with the given message. It exists so that callers only
// need to import this package.
func New(msg string) error {
	return errors.New(msg)
}

// As is a passthrough to the standard library so that callers don't need a
// second errors import.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a passthrough to the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// contextError annotates an error with the action that was being attempted
// when it occurred. It's a value type so that errors built in tests compare
// equal to errors returned by the code under test.
type contextError struct {
	cause   error
	context string
}

// WithContext wraps `err` with a short description of what was being done.
// The resulting message reads "context: cause". A nil error stays nil.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return contextError{cause: err, context: context}
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.cause)
}

func (err contextError) Unwrap() error {
	return err.cause
}

// FriendlyError is an error whose message is suitable for showing directly to
// an operator, rather than a developer.
type FriendlyError interface {
	error
	FriendlyMessage() string
}

type friendlyError struct {
	msg string
}

// NewFriendlyError creates an error with the message formatted according to
// `format`.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{fmt.Sprintf(format, args...)}
}

func (err friendlyError) Error() string {
	return err.msg
}

func (err friendlyError) FriendlyMessage() string {
	return err.msg
}

// RootCause unwraps all context added by WithContext and returns the
// original error.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.cause
	}
}

// GetPrintableMessage returns the friendly message if the root cause of `err`
// is a FriendlyError. Otherwise, it returns the full error chain.
func GetPrintableMessage(err error) string {
	if friendly, ok := RootCause(err).(FriendlyError); ok {
		return friendly.FriendlyMessage()
	}
	return err.Error()
}
