package deps

import (
	"context"
	"time"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/entities"
)

// Sleeper blocks for a duration or until ctx is done
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ProgressReporter receives join run progress, typically to render it
type ProgressReporter interface {
	// Begin is called before the first reference of an account
	Begin(account *domain.Account, total int)

	// Attempt is called before joining the i-th reference (1-based)
	Attempt(i, total int, ref domain.ChannelReference)

	// Outcome is called once per reference with its classified result
	Outcome(outcome entities.JoinOutcome)

	// Waiting is called once per second of a flood wait or cooldown
	Waiting(reason entities.WaitReason, remaining, total int)

	// Resumed is called when a flood wait or cooldown ends
	Resumed(reason entities.WaitReason)

	// Finish is called with the final summary of an account
	Finish(summary *entities.JoinSyncSummary)
}

// ReferenceRepository loads channel references to join
type ReferenceRepository interface {
	Load(path string) ([]domain.ChannelReference, error)
}
