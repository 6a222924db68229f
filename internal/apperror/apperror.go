// Package apperror classifies domain failures so the HTTP layer can map them
// to status codes without knowing every sentinel.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindForbidden       Kind = "forbidden"
	KindExpired         Kind = "expired"
	KindExternalCheck   Kind = "external_check_failed"
	KindUnauthenticated Kind = "unauthenticated"
	KindInternal        Kind = "internal"
)

type Error struct {
	kind    Kind
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

func (e *Error) Kind() Kind      { return e.kind }
func (e *Error) Code() string    { return e.code }
func (e *Error) Message() string { return e.message }
func (e *Error) Unwrap() error   { return e.err }

// Is matches on code so a wrapped copy of a sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code && t.kind == e.kind
}

func New(kind Kind, code, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

// Wrap attaches a cause to a sentinel while keeping its kind and code.
func Wrap(sentinel *Error, err error) *Error {
	if err == nil {
		return sentinel
	}
	return &Error{kind: sentinel.kind, code: sentinel.code, message: sentinel.message, err: err}
}

// Withf returns a copy of the sentinel with a more specific message.
func Withf(sentinel *Error, format string, args ...any) *Error {
	return &Error{kind: sentinel.kind, code: sentinel.code, message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.message
	}
	return "internal server error"
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return "INTERNAL"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return 400
	case KindUnauthenticated:
		return 401
	case KindForbidden:
		return 403
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	case KindExpired:
		return 410
	case KindExternalCheck:
		return 422
	default:
		return 500
	}
}
