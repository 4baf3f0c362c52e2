package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so API consumers can branch on it without
// parsing messages.
type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidMediaType Kind = "INVALID_MEDIA_TYPE"
	KindLimitExceeded    Kind = "LIMIT_EXCEEDED"
	KindConflict         Kind = "CONFLICT"
	KindStorage          Kind = "STORAGE_FAILURE"
)

// Error is a user-visible failure: a machine-checkable kind plus a human
// message. The wrapped cause stays server-side; responses never carry raw
// internal errors.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Errf creates an Error with a formatted message.
func Errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrap attaches a kind and user-facing message to an internal error.
func wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the kind from an error chain. Unclassified errors count
// as storage failures.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindStorage
}
