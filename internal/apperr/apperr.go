// Package apperr defines the error kinds shared by every business
// operation. Handlers translate a kind into an HTTP status; everything
// that is not one of the five business kinds is treated as an internal
// failure and surfaces as 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business failure.
type Kind int

const (
	// Internal covers storage/connectivity failures and anything else
	// the caller cannot fix by changing the request.
	Internal Kind = iota
	// BadRequest marks malformed or missing input.
	BadRequest
	// Unauthorized marks a missing, invalid or insufficiently
	// privileged credential.
	Unauthorized
	// NotActive marks a valid credential on an account that is pending
	// activation or has been deactivated.
	NotActive
	// NotFound marks a reference to an entity that does not exist or a
	// single-use key that was already consumed.
	NotFound
	// Conflict marks a uniqueness violation or a key mismatch in the
	// email-change flow.
	Conflict
)

// Error pairs a Kind with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err. Errors that do not carry a kind
// are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// HTTPStatus maps an error to the status code its kind prescribes.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotActive:
		return http.StatusLocked
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
