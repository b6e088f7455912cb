package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies recoverable, user-facing failures. Every failed
// transition carries enough context (record id, current state) for the
// presentation layer to explain it.
type ErrorKind string

const (
	ErrKindLimitExceeded   ErrorKind = "LIMIT_EXCEEDED"
	ErrKindOverdueBlock    ErrorKind = "OVERDUE_BLOCK"
	ErrKindAlreadyHeld     ErrorKind = "ALREADY_HELD"
	ErrKindInvalidState    ErrorKind = "INVALID_STATE"
	ErrKindEmptySelection  ErrorKind = "EMPTY_SELECTION"
	ErrKindAlreadyPaid     ErrorKind = "ALREADY_PAID"
	ErrKindDeletionBlocked ErrorKind = "DELETION_BLOCKED"
	ErrKindNotFound        ErrorKind = "NOT_FOUND"
	ErrKindUnauthorized    ErrorKind = "UNAUTHORIZED"
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the error kind, or "" for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
