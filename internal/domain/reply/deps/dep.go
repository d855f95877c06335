package deps

import (
	"context"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

// Responder answers events the router decided to act on
type Responder interface {
	// HandleDirect replies to a plain group message. The reservation holds the
	// chat cooldown and is settled by the responder.
	HandleDirect(ctx context.Context, acc *domain.Account, ev *domain.InboundEvent, bio string, res domain.Reservation) error

	// HandlePost comments on a channel post in the channel's discussion group
	HandlePost(ctx context.Context, acc *domain.Account, ev *domain.InboundEvent, bio string) error
}
