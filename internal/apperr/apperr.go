package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the request boundary.
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindConflict       Kind = "CONFLICT"
	KindAuth           Kind = "UNAUTHORIZED"
	KindNotFound       Kind = "NOT_FOUND"
	KindInfrastructure Kind = "INTERNAL"
)

// Error is an application error carrying a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation reports missing or malformed input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict reports a uniqueness violation.
func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Cause: cause}
}

// Auth reports bad credentials or an unusable token.
func Auth(msg string, cause error) *Error {
	return &Error{Kind: KindAuth, Message: msg, Cause: cause}
}

// NotFound reports a lookup that yielded nothing where a result was expected.
func NotFound(msg string, cause error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Cause: cause}
}

// Infrastructure wraps a query executor failure or any other unexpected fault.
func Infrastructure(msg string, cause error) *Error {
	return &Error{Kind: KindInfrastructure, Message: msg, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
// Errors outside the taxonomy are treated as infrastructure failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInfrastructure
}

// MessageOf returns the caller-safe message of err, or fallback when err is
// outside the taxonomy. Causes are never part of the message.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
