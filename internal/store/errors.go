package store

import "fmt"

// Kind classifies store failures the engine must react to.
type Kind string

// Store error kinds.
const (
	KindNotFound      Kind = "not_found"
	KindAlreadyExists Kind = "already_exists"
	KindInvalidInput  Kind = "invalid_input"
)

// Error is a store-level error. Compare with errors.Is against the sentinels.
type Error struct {
	Kind    Kind
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

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// WithMessage returns a copy with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Message: msg, Err: e.Err}
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Kind:    KindNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Kind:    KindAlreadyExists,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Kind:    KindInvalidInput,
		Message: "invalid input",
	}
)
