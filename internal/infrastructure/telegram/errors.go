package telegram

import (
	"errors"

	"github.com/gotd/td/tgerr"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

// rpcKinds maps Telegram RPC error types onto platform error kinds. The
// resulting messages keep the join and send classification tables valid.
// Types missing here, CHANNELS_TOO_MUCH among them, stay unclassified and
// end up as failed joins.
var rpcKinds = map[string]domain.ErrorKind{
	"USER_ALREADY_PARTICIPANT":  domain.ErrorKindAlreadyMember,
	"INVITE_REQUEST_SENT":       domain.ErrorKindPending,
	"CHANNEL_PRIVATE":           domain.ErrorKindBanned,
	"USER_BANNED_IN_CHANNEL":    domain.ErrorKindBanned,
	"CHAT_WRITE_FORBIDDEN":      domain.ErrorKindRestricted,
	"CHAT_RESTRICTED":           domain.ErrorKindRestricted,
	"CHAT_SEND_PLAIN_FORBIDDEN": domain.ErrorKindRestricted,
	"USERNAME_NOT_OCCUPIED":     domain.ErrorKindNotFound,
	"USERNAME_INVALID":          domain.ErrorKindNotFound,
	"INVITE_HASH_EXPIRED":       domain.ErrorKindNotFound,
	"INVITE_HASH_INVALID":       domain.ErrorKindNotFound,
	"CHANNEL_INVALID":           domain.ErrorKindNotFound,
	"AUTH_KEY_UNREGISTERED":     domain.ErrorKindUnauthorized,
	"SESSION_REVOKED":           domain.ErrorKindUnauthorized,
	"USER_PRIVACY_RESTRICTED":   domain.ErrorKindPrivacy,
}

// mapError converts a gotd RPC error into a *domain.PlatformError.
// Errors that are not RPC errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pe *domain.PlatformError
	if errors.As(err, &pe) {
		return err
	}

	if d, ok := tgerr.AsFloodWait(err); ok {
		return domain.NewFloodWaitError(int(d.Seconds()), err)
	}

	rpcErr, ok := tgerr.As(err)
	if !ok {
		return err
	}

	if kind, known := rpcKinds[rpcErr.Type]; known {
		return domain.NewPlatformError(kind, err)
	}
	return err
}
