// Package errors provides coded domain errors for the tag consolidation engine.
//
// Usage:
//
//	// In services - return typed errors
//	if existing != nil {
//	    return errors.DuplicateNamef("tag %q already exists", name)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrSelfMerge) {
//	    ...
//	}
//
//	// Or switch on the Code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeDuplicateName:
//	    case errors.CodeNotFound:
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the engine.
const (
	CodeDuplicateName          Code = "DUPLICATE_NAME"
	CodeNotFound               Code = "NOT_FOUND"
	CodeEmptyName              Code = "EMPTY_NAME"
	CodeSelfMerge              Code = "SELF_MERGE"
	CodeValidation             Code = "VALIDATION"
	CodeClassifierUnavailable  Code = "CLASSIFIER_UNAVAILABLE"
	CodeClassifierParseFailure Code = "CLASSIFIER_PARSE_FAILURE"
	CodeInternal               Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrDuplicateName          = &Error{Code: CodeDuplicateName, Message: "duplicate tag name"}
	ErrNotFound               = &Error{Code: CodeNotFound, Message: "not found"}
	ErrEmptyName              = &Error{Code: CodeEmptyName, Message: "tag name is empty"}
	ErrSelfMerge              = &Error{Code: CodeSelfMerge, Message: "cannot merge a tag into itself"}
	ErrValidation             = &Error{Code: CodeValidation, Message: "validation error"}
	ErrClassifierUnavailable  = &Error{Code: CodeClassifierUnavailable, Message: "classifier unavailable"}
	ErrClassifierParseFailure = &Error{Code: CodeClassifierParseFailure, Message: "classifier response could not be parsed"}
	ErrInternal               = &Error{Code: CodeInternal, Message: "internal error"}
)

// DuplicateNamef creates a duplicate name error with a formatted message.
func DuplicateNamef(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateName, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// SelfMergef creates a self-merge error with a formatted message.
func SelfMergef(format string, args ...any) *Error {
	return &Error{Code: CodeSelfMerge, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// ClassifierUnavailablef creates a classifier unavailable error with a formatted message.
func ClassifierUnavailablef(format string, args ...any) *Error {
	return &Error{Code: CodeClassifierUnavailable, Message: fmt.Sprintf(format, args...)}
}

// ClassifierParseFailure wraps a decode or schema error for one classifier response.
func ClassifierParseFailure(err error) *Error {
	return &Error{Code: CodeClassifierParseFailure, Message: "classifier response could not be parsed", cause: err}
}

// Internalf creates an internal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
