package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/reply/deps"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
	"github.com/s4nngr10r/tgexp/internal/utils"
)

// UpdatesHandler routes inbound events of all accounts to the responder
type UpdatesHandler struct {
	registry  domain.AccountRegistry
	limiter   domain.ResponseLimiter
	responder deps.Responder
	limits    *config.LimitsConfig
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewUpdatesHandler creates a new updates handler
func NewUpdatesHandler(
	registry domain.AccountRegistry,
	limiter domain.ResponseLimiter,
	responder deps.Responder,
	limits *config.LimitsConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UpdatesHandler {
	return &UpdatesHandler{
		registry:  registry,
		limiter:   limiter,
		responder: responder,
		limits:    limits,
		logger:    logger.With().Str("component", "updates_handler").Logger(),
		metrics:   m,
	}
}

// HandleEvent classifies one inbound event and dispatches it. It never
// panics and never returns an error: failures are logged and dropped.
func (h *UpdatesHandler) HandleEvent(ctx context.Context, ev *domain.InboundEvent) {
	if ev == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().
				Str("account_id", ev.AccountID).
				Str("panic", fmt.Sprint(r)).
				Msg("recovered from panic in event handler")
		}
	}()

	if err := h.handle(ctx, ev); err != nil && !errors.Is(err, domain.ErrNoLinkedGroup) {
		h.logger.Error().
			Err(err).
			Str("account_id", ev.AccountID).
			Int64("chat_id", ev.Chat.ID).
			Msg("error in message handler")
	}
}

func (h *UpdatesHandler) handle(ctx context.Context, ev *domain.InboundEvent) error {
	acc, ok := h.registry.Get(ev.AccountID)
	if !ok {
		h.metrics.RecordEvent("unknown_account")
		h.logger.Warn().Str("account_id", ev.AccountID).Msg("event for unregistered account, dropping")
		return nil
	}

	log := h.logger.With().
		Str("account_id", acc.ID).
		Int64("chat_id", ev.Chat.ID).
		Int("message_id", ev.MessageID).
		Logger()

	if ev.Out || (acc.Self != nil && ev.SenderID == acc.Self.ID) {
		h.metrics.RecordEvent("own")
		log.Debug().Msg("skipping our own message")
		return nil
	}

	if ev.Chat.Title == "" {
		h.metrics.RecordEvent("private")
		log.Debug().Msg("skipping private conversation message")
		return nil
	}

	log.Info().
		Str("chat", ev.Chat.Title).
		Int64("sender_id", ev.SenderID).
		Str("text", utils.Preview(ev.Text, 120)).
		Bool("is_channel", ev.Chat.IsChannel).
		Msg("message in chat")

	isPost := ev.IsChannelPost()
	key := domain.ChatKey(acc.ID, ev.Chat.ID)

	// only a direct reply ever records the chat key, so only it reserves
	var res domain.Reservation
	if isPost || ev.IsForwarded() {
		if !h.limiter.Allow(key, h.limits.ChatCooldown) {
			h.metrics.RecordSkip("chat_cooldown")
			log.Info().Msg("rate limiting, responded in this chat recently")
			return nil
		}
	} else {
		res, ok = h.limiter.Reserve(key, h.limits.ChatCooldown)
		if !ok {
			h.metrics.RecordSkip("chat_cooldown")
			log.Info().Msg("rate limiting, responded in this chat recently")
			return nil
		}
		// settled by the responder; this only frees the key on early exits
		defer res.Cancel()
	}

	bio := h.chatBio(ctx, acc, ev)

	switch {
	case isPost:
		h.metrics.RecordEvent("channel_post")
		log.Info().Msg("channel post, responding in comments if available")
		return h.responder.HandlePost(ctx, acc, ev, bio)
	case !ev.IsForwarded():
		h.metrics.RecordEvent("group_message")
		log.Info().Msg("regular group message, responding directly")
		return h.responder.HandleDirect(ctx, acc, ev, bio, res)
	default:
		h.metrics.RecordEvent("forwarded")
		log.Info().Msg("skipping forwarded message in group chat")
		return nil
	}
}

// chatBio prefers the bio carried by the event and falls back to full
// channel info. Any failure yields an empty bio.
func (h *UpdatesHandler) chatBio(ctx context.Context, acc *domain.Account, ev *domain.InboundEvent) string {
	if ev.Chat.About != nil {
		return *ev.Chat.About
	}
	if !ev.Chat.IsChannel {
		return ""
	}

	full, err := acc.Client.GetFullChannel(ctx, ev.Chat.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", ev.Chat.ID).Msg("error getting chat bio")
		return ""
	}
	return full.About
}
