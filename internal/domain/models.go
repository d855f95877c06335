package domain

import (
	"strconv"
	"strings"
	"time"
)

// Identity is the platform user behind an account
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// DisplayName returns the best human readable name for the identity
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	switch {
	case name != "":
		return name
	case i.Username != "":
		return "@" + i.Username
	default:
		return strconv.FormatInt(i.ID, 10)
	}
}

// Account is one authenticated session held by the registry
type Account struct {
	ID     string
	Phone  string
	Client PlatformClient
	Self   *Identity
}

// ChannelReference is a raw channel link as supplied by the user:
// a public username, t.me link, "+hash" or "joinchat/hash" invite.
type ChannelReference string

// ChatInfo describes the chat an inbound event arrived in.
// Title is empty for one-to-one conversations.
type ChatInfo struct {
	ID           int64
	Title        string
	Username     string
	IsChannel    bool
	LinkedChatID *int64
	About        *string
}

// ForwardOrigin is the forward header of a message
type ForwardOrigin struct {
	FromChannelID      int64
	FromUserID         int64
	FromName           string
	ChannelPost        int
	SavedFromChannelID int64
	SavedFromMsgID     int
	Date               time.Time
}

// InboundEvent is a new message or channel post delivered to an account
type InboundEvent struct {
	AccountID string
	Chat      ChatInfo
	SenderID  int64
	MessageID int
	Text      string
	IsPost    bool
	Out       bool
	Forward   *ForwardOrigin
	Date      time.Time
}

// IsChannelPost reports whether the event is a post in a broadcast channel
func (e *InboundEvent) IsChannelPost() bool {
	return e.Chat.IsChannel && e.IsPost
}

// IsForwarded reports whether the message carries forward metadata
func (e *InboundEvent) IsForwarded() bool {
	return e.Forward != nil
}

// HistoryMessage is a message fetched from chat history
type HistoryMessage struct {
	ID              int
	Text            string
	Date            time.Time
	SenderChannelID int64
	Forward         *ForwardOrigin
}

// ChannelFull is the subset of full channel info the responder needs
type ChannelFull struct {
	ID                 int64
	Title              string
	About              string
	LinkedChatID       int64
	SendMessagesDenied bool
}

// HasLinkedChat reports whether the channel has a discussion group
func (c *ChannelFull) HasLinkedChat() bool {
	return c.LinkedChatID != 0
}

// DialogInfo is one row of an account's dialog list
type DialogInfo struct {
	ID           int64
	Title        string
	Username     string
	IsChannel    bool
	IsGroup      bool
	LinkedChatID int64
	UnreadCount  int
}

// Role of a completion prompt turn
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one prompt turn sent to the completion service
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single chat completion call
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// Activity event types
const (
	ActivityDirectReply = "direct_reply"
	ActivityPostReply   = "post_reply"
	ActivityJoinSync    = "join_sync"
)

// ActivityEvent records something the responder did
type ActivityEvent struct {
	ID        string    `json:"event_id"`
	Type      string    `json:"type"`
	AccountID string    `json:"account_id"`
	ChatID    int64     `json:"chat_id,omitempty"`
	MessageID int       `json:"message_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatKey identifies the per-chat cooldown of one account
func ChatKey(accountID string, chatID int64) string {
	return accountID + ":" + strconv.FormatInt(chatID, 10)
}

// PostKey identifies the per-post cooldown of one account in a discussion group
func PostKey(accountID string, groupID int64, messageID int) string {
	return accountID + ":" + strconv.FormatInt(groupID, 10) + ":" + strconv.Itoa(messageID)
}
