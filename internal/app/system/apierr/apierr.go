// Package apierr defines the error taxonomy shared by services and handlers.
//
// Services return *Error values carrying the HTTP status and the message to
// show the caller. Handlers translate them directly into a response; nothing
// in the request path panics on a business error.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// Error is a business or infrastructure failure with a client-facing message.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err}
}

// Unauthorized is returned when the principal is missing or malformed.
func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "Unauthorized"
	}
	return newErr(http.StatusUnauthorized, msg, nil)
}

// Forbidden is returned when scopes or ownership do not allow the action.
func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "Forbidden"
	}
	return newErr(http.StatusForbidden, msg, nil)
}

// Invalid is returned for malformed ids, payloads, or missing fields.
func Invalid(msg string) *Error { return newErr(http.StatusBadRequest, msg, nil) }

// NotFound is returned when a project, entry, organization, or user is absent.
func NotFound(msg string) *Error { return newErr(http.StatusNotFound, msg, nil) }

// Conflict is returned when the request contradicts current state.
func Conflict(msg string) *Error { return newErr(http.StatusConflict, msg, nil) }

// Unavailable wraps a persistence or object-storage failure.
func Unavailable(msg string, err error) *Error {
	return newErr(http.StatusServiceUnavailable, msg, err)
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error {
	return newErr(http.StatusInternalServerError, msg, err)
}

// Status returns the HTTP status for err (500 for unclassified errors).
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// Is reports whether err is an *Error with the given status.
func Is(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}

// From classifies a raw store error. notFound is the message used when the
// document is missing. *Error values pass through unchanged.
func From(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound(notFound)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return Unavailable("Database unavailable", err)
	}
	return Internal("Internal server error", err)
}
