package business

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
	"github.com/s4nngr10r/tgexp/internal/utils"
)

// UseCase generates and delivers replies to group messages and channel posts
type UseCase struct {
	generator domain.ResponseGenerator
	limiter   domain.ResponseLimiter
	publisher domain.ActivityPublisher
	limits    *config.LimitsConfig
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewUseCase creates a new reply use case
func NewUseCase(
	generator domain.ResponseGenerator,
	limiter domain.ResponseLimiter,
	publisher domain.ActivityPublisher,
	limits *config.LimitsConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		generator: generator,
		limiter:   limiter,
		publisher: publisher,
		limits:    limits,
		logger:    logger.With().Str("component", "reply_usecase").Logger(),
		metrics:   m,
	}
}

// HandleDirect answers a regular group message in the same chat. res is
// committed after a successful send and cancelled otherwise.
func (u *UseCase) HandleDirect(
	ctx context.Context,
	acc *domain.Account,
	ev *domain.InboundEvent,
	bio string,
	res domain.Reservation,
) error {
	log := u.logger.With().
		Str("account_id", acc.ID).
		Int64("chat_id", ev.Chat.ID).
		Str("chat", ev.Chat.Title).
		Logger()

	text, ok := u.generator.Generate(ctx, acc.ID, ev.Chat.Title, bio, ev.Text)
	if !ok || text == "" {
		res.Cancel()
		u.metrics.RecordSkip("no_response")
		log.Warn().Msg("could not generate response")
		return nil
	}

	log.Info().Str("response", utils.Preview(text, 80)).Msg("sending direct response")
	if err := acc.Client.SendMessage(ctx, ev.Chat.ID, text, 0); err != nil {
		res.Cancel()
		u.logSendError(log, err, "failed to send direct response")
		u.publish(ctx, acc.ID, domain.ActivityDirectReply, ev.Chat.ID, ev.MessageID, "failed", err.Error())
		return fmt.Errorf("failed to send response to chat %d: %w", ev.Chat.ID, err)
	}

	res.Commit()
	u.metrics.RecordReply("direct")
	u.publish(ctx, acc.ID, domain.ActivityDirectReply, ev.Chat.ID, ev.MessageID, "sent", "")
	return nil
}

// HandlePost comments on a channel post inside the channel's discussion
// group, replying to the forwarded copy of the post when it can be found.
func (u *UseCase) HandlePost(ctx context.Context, acc *domain.Account, ev *domain.InboundEvent, bio string) error {
	log := u.logger.With().
		Str("account_id", acc.ID).
		Int64("channel_id", ev.Chat.ID).
		Str("channel", ev.Chat.Title).
		Int("post_id", ev.MessageID).
		Logger()
	client := acc.Client

	full, err := client.GetFullChannel(ctx, ev.Chat.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get full channel info")
		return fmt.Errorf("failed to get channel %d: %w", ev.Chat.ID, err)
	}
	if !full.HasLinkedChat() {
		u.metrics.RecordSkip("no_linked_group")
		log.Warn().Msg("no linked group, skipping channel post")
		return domain.ErrNoLinkedGroup
	}
	groupID := full.LinkedChatID
	log = log.With().Int64("group_id", groupID).Logger()

	key := domain.PostKey(acc.ID, groupID, ev.MessageID)
	res, ok := u.limiter.Reserve(key, u.limits.PostCooldown)
	if !ok {
		u.metrics.RecordSkip("post_cooldown")
		log.Info().Msg("already responded to this post recently, skipping")
		return nil
	}
	// a no-op once committed
	defer res.Cancel()

	text, ok := u.generator.Generate(ctx, acc.ID, ev.Chat.Title, bio, ev.Text)
	if !ok || text == "" {
		u.metrics.RecordSkip("no_response")
		log.Warn().Msg("could not generate response for channel post")
		return nil
	}

	if _, err := client.GetHistory(ctx, groupID, 1); err != nil {
		if accessDenied(err) {
			u.metrics.RecordSkip("group_inaccessible")
			log.Error().Err(err).Msg("cannot access discussion group")
			return nil
		}
		log.Warn().Err(err).Msg("could not verify discussion group access, trying anyway")
	}

	if group, err := client.GetFullChannel(ctx, groupID); err != nil {
		log.Warn().Err(err).Msg("could not verify discussion group permissions")
	} else if group.SendMessagesDenied {
		u.metrics.RecordSkip("send_denied")
		log.Warn().Msg("no permission to send messages in discussion group")
		return nil
	}

	candidates, err := client.GetHistory(ctx, groupID, u.limits.HistoryScan)
	if err != nil {
		log.Warn().Err(err).Msg("failed to scan discussion group history")
	}

	src := Source{
		ChannelID: ev.Chat.ID,
		PostID:    ev.MessageID,
		Title:     ev.Chat.Title,
		Text:      ev.Text,
		Date:      ev.Date,
	}

	if match, found := Correlate(candidates, src, u.limits.ContentMatchSkew); found {
		log.Info().
			Int("message_id", match.Message.ID).
			Str("strategy", match.Strategy).
			Msg("found forwarded post in discussion group")

		if err := client.SendMessage(ctx, groupID, text, match.Message.ID); err != nil {
			u.logSendError(log, err, "failed to reply in discussion group")
			u.publish(ctx, acc.ID, domain.ActivityPostReply, groupID, ev.MessageID, "failed", err.Error())
			return fmt.Errorf("failed to reply in group %d: %w", groupID, err)
		}

		res.Commit()
		u.metrics.RecordReply("post_reply")
		u.publish(ctx, acc.ID, domain.ActivityPostReply, groupID, ev.MessageID, "sent", "reply:"+match.Strategy)
		log.Info().Msg("response sent as reply in discussion group")
		return nil
	}

	log.Warn().Msg("forwarded post not found in discussion group, sending without reply")
	err = client.SendMessage(ctx, groupID, text, 0)

	// the post counts as answered even when this send fails
	res.Commit()

	if err != nil {
		u.logSendError(log, err, "failed to send message to discussion group")
		u.publish(ctx, acc.ID, domain.ActivityPostReply, groupID, ev.MessageID, "failed", err.Error())
		return fmt.Errorf("failed to send to group %d: %w", groupID, err)
	}

	u.metrics.RecordReply("post_message")
	u.publish(ctx, acc.ID, domain.ActivityPostReply, groupID, ev.MessageID, "sent", "standalone")
	log.Info().Msg("response sent to discussion group")
	return nil
}

func (u *UseCase) logSendError(log zerolog.Logger, err error, msg string) {
	class, seconds := ClassifySendError(err, int(u.limits.DefaultFloodWait/time.Second))
	u.metrics.RecordSendError(class.String())

	switch class {
	case SendFailureForbidden:
		log.Error().Err(err).Msg(msg + ": banned or restricted")
	case SendFailureApproval:
		log.Warn().Err(err).Msg(msg + ": admin approval required")
	case SendFailureFloodWait:
		log.Warn().Err(err).Int("wait_seconds", seconds).Msg(msg + ": rate limited")
	default:
		log.Error().Err(err).Msg(msg)
	}
}

func (u *UseCase) publish(ctx context.Context, accountID, kind string, chatID int64, msgID int, outcome, detail string) {
	err := u.publisher.Publish(context.WithoutCancel(ctx), domain.ActivityEvent{
		ID:        uuid.NewString(),
		Type:      kind,
		AccountID: accountID,
		ChatID:    chatID,
		MessageID: msgID,
		Outcome:   outcome,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		u.logger.Warn().Err(err).Str("type", kind).Msg("failed to publish activity event")
	}
}
