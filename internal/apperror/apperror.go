// Package apperror defines the closed set of error kinds the application
// reports to its callers.
//
// ERROR KINDS:
//   - KindTransientIO: a store or remote service was unreachable or failed
//   - KindValidation: input was rejected before any store request was made
//   - KindNotFound: a post or user does not exist
//   - KindForbidden: the caller is not allowed to perform the action
//
// Every *AppError matches its kind's sentinel via errors.Is, so callers can
// dispatch with errors.Is(err, apperror.ErrNotFound) or with KindOf(err).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrTransient  = errors.New("transient I/O failure")
	ErrForbidden  = errors.New("forbidden")
)

// Kind classifies an AppError.
type Kind int

const (
	KindInternal Kind = iota
	KindTransientIO
	KindValidation
	KindNotFound
	KindForbidden
)

// String returns the machine-readable name used in API error bodies.
func (k Kind) String() string {
	switch k {
	case KindTransientIO:
		return "transient_io"
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal_error"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransientIO:
		return ErrTransient
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindForbidden:
		return ErrForbidden
	default:
		return nil
	}
}

type AppError struct {
	Kind    Kind
	Err     error  // underlying cause
	Message string // human-readable, safe to show to users
	Field   string // optional: input field that failed validation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind. The cause chain is
// still walked by errors.Is through Unwrap.
func (e *AppError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Transient wraps a store or remote-service failure. The cause is kept for
// logging; only message is shown to users.
func Transient(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrTransient
	}
	return &AppError{
		Kind:    KindTransientIO,
		Err:     cause,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Err:     ErrForbidden,
		Message: message,
	}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
