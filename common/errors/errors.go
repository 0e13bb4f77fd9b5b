package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how it should be reported to a caller.
type Kind int

// Kind enums.
const (
	KindPersistence Kind = iota
	KindValidation
	KindNotFound
	KindRule
	KindConflict
	KindUnauthorized
)

// PersistenceMessage is the only text callers see for storage failures.
const PersistenceMessage = "Database error."

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRule:
		return "rule"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "persistence"
	}
}

// HTTPStatus returns the response code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindRule:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a categorized error. Sentinels compare by identity, so errors.Is works on
// wrapped values.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Public returns the message safe to show a caller.
func (e *Error) Public() string {
	if e.Kind == KindPersistence {
		return PersistenceMessage
	}
	return e.Msg
}

// Validation reports a missing or malformed input.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing record.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Rule reports a business rule violation.
func Rule(format string, args ...interface{}) *Error {
	return &Error{Kind: KindRule, Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized reports rejected credentials.
func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

// Persistence wraps a storage failure. Already categorized errors pass through.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindPersistence, Msg: op, Err: err}
}

// As extracts the categorized error, treating anything else as a persistence failure.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindPersistence, Msg: "unexpected error", Err: err}
}
