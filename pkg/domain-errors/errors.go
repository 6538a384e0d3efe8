// Package domainerrors provides coded errors for the domain layer.
//
// Services return these so transport layers can translate them into HTTP
// statuses without string matching. Stores return sentinel errors
// (pkg/platform/sentinel) instead; services translate at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
)

// DomainError carries a code, a human-readable message, and an optional cause.
type DomainError struct {
	Code    Code
	Message string
	cause   error
}

// New builds a domain error with no underlying cause.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Wrap builds a domain error around an underlying cause. The cause is
// preserved for errors.Is/As chains but never rendered to clients.
func Wrap(cause error, code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, cause: cause}
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// HasCode reports whether err (or anything it wraps) is a DomainError with
// the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the client-safe message from err. Unclassified errors
// yield an empty message so internals never leak.
func MessageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
