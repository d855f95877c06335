package domain

import (
	"context"
	"time"
)

// PlatformClient is one messaging platform session
type PlatformClient interface {
	// AccountID returns the identifier the session is stored under
	AccountID() string

	// Connect connects and authenticates the session
	Connect(ctx context.Context) error

	// Disconnect stops the session. Safe to call more than once.
	Disconnect(ctx context.Context) error

	// IsConnected reports whether the transport is up
	IsConnected() bool

	// Self returns the identity of the logged in user
	Self(ctx context.Context) (*Identity, error)

	// ListDialogs enumerates the account's channels and groups
	ListDialogs(ctx context.Context) ([]DialogInfo, error)

	// JoinPublic resolves a public username and joins it
	JoinPublic(ctx context.Context, username string) (string, error)

	// JoinInvite imports a private invite hash
	JoinInvite(ctx context.Context, hash string) (string, error)

	// GetFullChannel fetches full info of a channel or supergroup
	GetFullChannel(ctx context.Context, chatID int64) (*ChannelFull, error)

	// GetHistory returns up to limit recent messages, newest first
	GetHistory(ctx context.Context, chatID int64, limit int) ([]HistoryMessage, error)

	// SendMessage posts text into the chat. A non-zero replyTo makes it a reply.
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int) error
}

// AccountRegistry holds the live accounts keyed by id
type AccountRegistry interface {
	// Get returns the account with the given id
	Get(accountID string) (*Account, bool)

	// All returns accounts in registration order
	All() []*Account
}

// EventHandler consumes inbound events of every account
type EventHandler interface {
	HandleEvent(ctx context.Context, ev *InboundEvent)
}

// CompletionClient produces text from a chat prompt
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ResponseGenerator writes a reply for a message in a chat
type ResponseGenerator interface {
	// Generate returns the reply and true, or false when nothing should be sent
	Generate(ctx context.Context, accountID, chatTitle, chatBio, message string) (string, bool)
}

// Reservation holds a cooldown slot until it is committed or cancelled
type Reservation interface {
	// Commit records the response time for the key
	Commit()

	// Cancel releases the slot without recording anything
	Cancel()
}

// ResponseLimiter enforces per-key reply cooldowns
type ResponseLimiter interface {
	// Allow reports whether no response was recorded for key within window
	Allow(key string, window time.Duration) bool

	// Reserve atomically checks the cooldown and claims the key.
	// It returns false if the key is cooling down or already reserved.
	Reserve(key string, window time.Duration) (Reservation, bool)
}

// ActivityPublisher ships activity events to an external sink
type ActivityPublisher interface {
	Publish(ctx context.Context, event ActivityEvent) error
}
