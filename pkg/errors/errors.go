package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to react to its category
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindPermission
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a categorized error with an optional cause
type Error struct {
	Kind    Kind
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind and message
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.message == e.message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to cause
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, message: message, cause: cause}
}

func NewValidationError(message string) *Error  { return New(KindValidation, message) }
func NewNotFoundError(message string) *Error    { return New(KindNotFound, message) }
func NewPermissionError(message string) *Error  { return New(KindPermission, message) }
func NewConflictError(message string) *Error    { return New(KindConflict, message) }
func NewInternalError(message string) *Error    { return New(KindInternal, message) }
func NewUnavailableError(message string) *Error { return New(KindUnavailable, message) }

// KindOf returns the kind of the first *Error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
