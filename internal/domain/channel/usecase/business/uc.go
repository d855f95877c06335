package business

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/deps"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/entities"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
)

// UseCase implements channel listing and join synchronization
type UseCase struct {
	registry  domain.AccountRegistry
	limits    *config.LimitsConfig
	sleeper   deps.Sleeper
	publisher domain.ActivityPublisher
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewUseCase creates a new channel use case
func NewUseCase(
	registry domain.AccountRegistry,
	limits *config.LimitsConfig,
	sleeper deps.Sleeper,
	publisher domain.ActivityPublisher,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		registry:  registry,
		limits:    limits,
		sleeper:   sleeper,
		publisher: publisher,
		logger:    logger.With().Str("component", "channel_usecase").Logger(),
		metrics:   m,
	}
}

// ListChannels returns the channels and groups of an account
func (u *UseCase) ListChannels(ctx context.Context, accountID string) ([]domain.DialogInfo, error) {
	acc, ok := u.registry.Get(accountID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}

	dialogs, err := acc.Client.ListDialogs(ctx)
	if err != nil {
		u.logger.Error().Err(err).Str("account_id", accountID).Msg("failed to list dialogs")
		return nil, err
	}

	out := make([]domain.DialogInfo, 0, len(dialogs))
	for _, d := range dialogs {
		if d.IsChannel || d.IsGroup {
			out = append(out, d)
		}
	}
	return out, nil
}

// SyncAll joins refs on every registered account, one account after another.
// A failing account never stops the others.
func (u *UseCase) SyncAll(
	ctx context.Context,
	refs []domain.ChannelReference,
	progress deps.ProgressReporter,
) (map[string]*entities.JoinSyncSummary, error) {
	accounts := u.registry.All()
	if len(accounts) == 0 {
		return nil, domain.ErrNoActiveAccounts
	}

	results := make(map[string]*entities.JoinSyncSummary, len(accounts))
	for _, acc := range accounts {
		summary, err := u.Sync(ctx, acc, refs, progress)
		results[acc.ID] = summary
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Sync joins each reference once, in order, for one account.
// Failures never abort the run; only ctx cancellation does, in which case
// the partial summary is returned together with ctx's error.
func (u *UseCase) Sync(
	ctx context.Context,
	acc *domain.Account,
	refs []domain.ChannelReference,
	progress deps.ProgressReporter,
) (*entities.JoinSyncSummary, error) {
	log := u.logger.With().Str("account_id", acc.ID).Logger()
	summary := &entities.JoinSyncSummary{AccountID: acc.ID}
	total := len(refs)
	freshJoins := 0

	log.Info().Int("channels", total).Msg("starting channel synchronization")
	progress.Begin(acc, total)

	finish := func(err error) (*entities.JoinSyncSummary, error) {
		progress.Finish(summary)
		u.metrics.JoinSyncRuns.Inc()
		u.publish(context.WithoutCancel(ctx), acc.ID, summary)
		log.Info().
			Int("joined", summary.Joined).
			Int("already_member", summary.AlreadyMember).
			Int("pending", summary.Pending).
			Int("banned", summary.Banned).
			Int("flood_waited", summary.FloodWaited).
			Int("failed", summary.Failed).
			Bool("success", summary.Success()).
			Msg("channel synchronization finished")
		return summary, err
	}

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		progress.Attempt(i+1, total, ref)
		outcome := u.join(ctx, acc.Client, ref)
		summary.Add(outcome)
		progress.Outcome(outcome)
		u.metrics.RecordJoinOutcome(outcome.Kind.String())

		if outcome.Kind == entities.OutcomeJoined {
			freshJoins++
		}
		if i == total-1 {
			break
		}

		var err error
		switch {
		case outcome.Kind == entities.OutcomeFloodWait:
			log.Warn().
				Str("channel", string(ref)).
				Int("wait_seconds", outcome.WaitSeconds).
				Msg("rate limited, waiting before next channel")
			u.metrics.RecordFloodWait(outcome.WaitSeconds)
			err = u.countdown(ctx, entities.WaitFloodWait, outcome.WaitSeconds, progress)
		case outcome.Kind == entities.OutcomeJoined && freshJoins%u.limits.JoinBatchSize == 0:
			log.Info().
				Int("joined", freshJoins).
				Dur("cooldown", u.limits.JoinBatchPause).
				Msg("batch joined, cooling down")
			err = u.countdown(ctx, entities.WaitBatchCooldown, int(u.limits.JoinBatchPause/time.Second), progress)
		default:
			err = u.sleeper.Sleep(ctx, u.limits.JoinPause)
		}
		if err != nil {
			return finish(err)
		}
	}

	return finish(nil)
}

func (u *UseCase) join(ctx context.Context, client domain.PlatformClient, ref domain.ChannelReference) entities.JoinOutcome {
	log := u.logger.With().Str("account_id", client.AccountID()).Str("channel", string(ref)).Logger()

	target, err := ParseReference(ref)
	if err != nil {
		log.Error().Err(err).Msg("invalid channel reference")
		return entities.JoinOutcome{Reference: ref, Kind: entities.OutcomeFailed, Reason: err.Error()}
	}

	var title string
	if target.IsInvite() {
		log.Info().Str("invite_hash", target.InviteHash).Msg("joining private channel")
		title, err = client.JoinInvite(ctx, target.InviteHash)
	} else {
		log.Info().Str("username", target.Username).Msg("joining public channel")
		title, err = client.JoinPublic(ctx, target.Username)
	}

	if err == nil {
		log.Info().Str("title", title).Msg("joined channel")
		return entities.JoinOutcome{Reference: ref, Kind: entities.OutcomeJoined, Title: title}
	}

	outcome := ClassifyJoinError(ref, err, int(u.limits.DefaultFloodWait/time.Second))
	evt := log.Warn()
	if outcome.Kind == entities.OutcomeFailed || outcome.Kind == entities.OutcomeBanned {
		evt = log.Error()
	}
	evt.Err(err).Str("outcome", outcome.Kind.String()).Msg("join attempt did not succeed")
	return outcome
}

// countdown sleeps seconds one second at a time so progress can be shown
func (u *UseCase) countdown(ctx context.Context, reason entities.WaitReason, seconds int, progress deps.ProgressReporter) error {
	for remaining := seconds; remaining > 0; remaining-- {
		progress.Waiting(reason, remaining, seconds)
		if err := u.sleeper.Sleep(ctx, time.Second); err != nil {
			return err
		}
	}
	progress.Resumed(reason)
	return nil
}

func (u *UseCase) publish(ctx context.Context, accountID string, s *entities.JoinSyncSummary) {
	outcome := "success"
	if !s.Success() {
		outcome = "failure"
	}
	err := u.publisher.Publish(ctx, domain.ActivityEvent{
		ID:        uuid.NewString(),
		Type:      domain.ActivityJoinSync,
		AccountID: accountID,
		Outcome:   outcome,
		Detail: fmt.Sprintf("joined=%d already=%d pending=%d banned=%d flood_waited=%d failed=%d",
			s.Joined, s.AlreadyMember, s.Pending, s.Banned, s.FloodWaited, s.Failed),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		u.logger.Warn().Err(err).Msg("failed to publish join sync event")
	}
}
