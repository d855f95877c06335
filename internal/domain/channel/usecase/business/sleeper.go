package business

import (
	"context"
	"time"

	"github.com/s4nngr10r/tgexp/internal/domain/channel/deps"
)

type timerSleeper struct{}

// NewSleeper returns a Sleeper backed by real timers
func NewSleeper() deps.Sleeper {
	return timerSleeper{}
}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
