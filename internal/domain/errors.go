package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when account is not registered
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists is returned when an account id is registered twice
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrNoActiveAccounts is returned when no accounts are loaded
	ErrNoActiveAccounts = errors.New("no active accounts available")

	// ErrAuthenticationFailed is returned when authentication fails
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotConnected is returned when operation requires connection
	ErrNotConnected = errors.New("not connected to Telegram")

	// ErrCredentialsNotFound is returned when no credentials file exists for an account
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrInvalidReference is returned for an empty or malformed channel reference
	ErrInvalidReference = errors.New("invalid channel reference")

	// ErrChatNotFound is returned when a chat cannot be resolved to an entity
	ErrChatNotFound = errors.New("chat not found")

	// ErrNoLinkedGroup is returned when a channel has no discussion group
	ErrNoLinkedGroup = errors.New("no linked group")

	// ErrMissingAPIKey is returned when the completion service key is not set
	ErrMissingAPIKey = errors.New("completion service API key is not set")
)

// ErrorKind is the structured category of a platform failure
type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindFloodWait
	ErrorKindAlreadyMember
	ErrorKindPending
	ErrorKindBanned
	ErrorKindRestricted
	ErrorKindNotFound
	ErrorKindUnauthorized
	ErrorKindPrivacy
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindFloodWait:
		return "flood_wait"
	case ErrorKindAlreadyMember:
		return "already_member"
	case ErrorKindPending:
		return "pending"
	case ErrorKindBanned:
		return "banned"
	case ErrorKindRestricted:
		return "restricted"
	case ErrorKindNotFound:
		return "not_found"
	case ErrorKindUnauthorized:
		return "unauthorized"
	case ErrorKindPrivacy:
		return "privacy"
	default:
		return "unknown"
	}
}

// PlatformError is a classified failure returned by a PlatformClient.
// Its message reads like the platform's own error text so that text based
// classification of the same error agrees with Kind.
type PlatformError struct {
	Kind    ErrorKind
	Seconds int
	Err     error
}

func (e *PlatformError) Error() string {
	var prefix string
	switch e.Kind {
	case ErrorKindFloodWait:
		prefix = fmt.Sprintf("floodwait: a wait of %d seconds is required", e.Seconds)
	case ErrorKindAlreadyMember:
		prefix = "already a participant"
	case ErrorKindPending:
		prefix = "successfully requested to join, wait for admin approval"
	case ErrorKindBanned:
		prefix = "banned or not allowed"
	case ErrorKindRestricted:
		prefix = "restricted"
	case ErrorKindNotFound:
		prefix = "not found"
	case ErrorKindUnauthorized:
		prefix = "authorization required"
	case ErrorKindPrivacy:
		prefix = "not accessible due to privacy settings"
	default:
		prefix = "platform error"
	}
	if e.Err == nil {
		return prefix
	}
	return prefix + ": " + e.Err.Error()
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewPlatformError wraps err with a kind
func NewPlatformError(kind ErrorKind, err error) *PlatformError {
	return &PlatformError{Kind: kind, Err: err}
}

// NewFloodWaitError returns a flood wait error for the given number of seconds
func NewFloodWaitError(seconds int, err error) *PlatformError {
	return &PlatformError{Kind: ErrorKindFloodWait, Seconds: seconds, Err: err}
}

// AsPlatformError extracts a *PlatformError with a known kind from err's chain
func AsPlatformError(err error) (*PlatformError, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) && pe.Kind != ErrorKindUnknown {
		return pe, true
	}
	return nil, false
}
