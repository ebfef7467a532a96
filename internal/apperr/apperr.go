// Package apperr defines the error categories surfaced by the storefront
// services and their mapping onto HTTP status codes.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Kind is the category of a failure as seen by an API caller.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindRateLimited
	KindTransaction
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindTransaction:
		return "transaction"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error carries a caller-safe Message and an optional internal cause.
// Only Message is ever written to a client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(msg string) *Error   { return newError(KindValidation, msg, nil) }
func Auth(msg string) *Error         { return newError(KindAuth, msg, nil) }
func NotFound(msg string) *Error     { return newError(KindNotFound, msg, nil) }
func Conflict(msg string) *Error     { return newError(KindConflict, msg, nil) }
func RateLimited(msg string) *Error  { return newError(KindRateLimited, msg, nil) }
func Unavailable(msg string, cause error) *Error {
	return newError(KindUnavailable, msg, cause)
}

// Transaction wraps a failure inside a multi-statement unit that was rolled back.
func Transaction(msg string, cause error) *Error {
	return newError(KindTransaction, msg, cause)
}

// Internal wraps an unexpected failure.
func Internal(msg string, cause error) *Error {
	return newError(KindInternal, msg, cause)
}

// KindOf reports the category of err. Context deadline errors are always
// reported as KindUnavailable so callers know they may retry.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind != KindUnavailable && errors.Is(e.Err, context.DeadlineExceeded) {
			return KindUnavailable
		}
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUnavailable
	}
	return KindInternal
}

// Is reports whether err belongs to kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the text that may be shown to a client.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if KindOf(err) == KindUnavailable && e.Kind != KindUnavailable {
			return "Request timed out, please retry"
		}
		return e.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out, please retry"
	}
	return "Internal server error"
}

// HTTPStatus maps a kind onto the status code the API answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
