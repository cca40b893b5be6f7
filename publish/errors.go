package publish

import (
	"errors"
	"fmt"
)

var (
	// A package could not be constructed from the configured distribution.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrFileRead             = errors.New("file read failure")
	// A source package's contents could not be resolved. The package is still uploaded.
	ErrHydration = errors.New("hydration failure")
	ErrUpload    = errors.New("upload failure")
)

// Error is a failure local to a single package.
// errors.Is matches both its Kind and its Cause.
type Error struct {
	Kind     error
	Filename string
	Cause    error
}

func newError(kind error, filename string, cause error) *Error {
	return &Error{Kind: kind, Filename: filename, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Filename, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Filename, e.Kind, e.Cause)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
