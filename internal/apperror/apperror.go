// Package apperror defines the application's domain error taxonomy.
//
// Services return these errors; the HTTP layer translates them to status
// codes in one place (handler/response.go). The service layer never imports
// net/http and never knows a 404 from a 409.
//
// The four classes mirror the API surface:
//
//	ErrUnauthenticated → 401 (missing/invalid/expired token)
//	ErrNotFound        → 404 (absent OR owned by another user — same signal)
//	ErrConflict        → 409 (duplicate email, second vCard)
//	ErrValidation      → 400 (malformed payload, bad URL, wrong enum value)
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation error")
)

// AppError carries a sentinel error plus a human-readable message.
//
// errors.Is(err, ErrNotFound) works through the whole wrap chain because
// AppError implements Unwrap() — handlers use that to pick the status code,
// and the Message field for the response body.
type AppError struct {
	Err     error  // sentinel identifying the error class
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound returns a not-found error for the named resource.
//
// DELIBERATELY NO ID IN THE MESSAGE:
// Ownership failures collapse into the same NotFound as genuinely missing
// rows. Echoing the requested ID back would give an unauthorized caller a
// probe for which IDs exist — "vCard not found" / "Web link not found" is
// all anyone learns.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// Conflict returns a conflict error with the given message.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthenticated returns an authentication failure with the given message.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// IsNotFound reports whether err has ErrNotFound anywhere in its chain.
// Shorthand for errors.Is(err, ErrNotFound) — the check appears at every
// ownership boundary, so it earns a name.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationFailed returns a validation error for a specific field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}
