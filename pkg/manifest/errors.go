package manifest

import (
	"fmt"

	"github.com/sidkik/mediasync/pkg/errors"
)

// The error kinds below are all handled the same way by the scheduler (the
// cycle fails and is retried). They're distinguished for logs and metrics.
const (
	KindFetch   = "fetch"
	KindParse   = "parse"
	KindInvalid = "invalid"
)

// FetchError is returned when the manifest couldn't be retrieved.
type FetchError struct {
	URL   string
	Cause error
}

func (err *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", err.URL, err.Cause)
}

func (err *FetchError) Unwrap() error {
	return err.Cause
}

// ParseError is returned when the manifest body isn't valid JSON.
type ParseError struct {
	Cause error
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("parse manifest: %s", err.Cause)
}

func (err *ParseError) Unwrap() error {
	return err.Cause
}

// InvalidError is returned when the manifest is valid JSON but doesn't
// contain a non-empty multimedia list.
type InvalidError struct {
	Reason string
}

func (err *InvalidError) Error() string {
	return fmt.Sprintf("invalid manifest: %s", err.Reason)
}

// ErrorKind classifies an error returned by a Fetcher. It returns an empty
// string for errors that didn't come from the manifest package.
func ErrorKind(err error) string {
	var fetchErr *FetchError
	var parseErr *ParseError
	var invalidErr *InvalidError
	switch {
	case errors.As(err, &fetchErr):
		return KindFetch
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &invalidErr):
		return KindInvalid
	}
	return ""
}
