package lifecycle

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies lifecycle failures so callers can distinguish a
// permanent rule violation from a lost race or a flaky store.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_FAILED"
	KindAuthorization     ErrorKind = "FORBIDDEN"
	KindIllegalTransition ErrorKind = "ILLEGAL_TRANSITION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindTransient         ErrorKind = "TRANSIENT"
)

// Error standardizes application errors across the engine, repository and
// HTTP surface.
type Error struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind via the sentinel constructors below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func NewValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusBadRequest}
}

func NewAuthorizationError(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusForbidden}
}

func NewIllegalTransitionError(format string, args ...any) error {
	return &Error{Kind: KindIllegalTransition, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusUnprocessableEntity}
}

func NewNotFoundError(resource string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), HTTPStatus: http.StatusNotFound}
}

func NewConflictError(message string) error {
	return &Error{Kind: KindConflict, Message: message, HTTPStatus: http.StatusConflict}
}

func NewTransientError(err error) error {
	return &Error{Kind: KindTransient, Message: "store unavailable", HTTPStatus: http.StatusServiceUnavailable, Err: err}
}

// KindOf extracts the kind of err, or empty string for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatusOf maps err to a response status, defaulting to 500.
func HTTPStatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}
