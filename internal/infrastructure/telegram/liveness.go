package telegram

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
)

// LivenessMonitor periodically reconnects accounts whose transport dropped.
// Accounts are never removed from the registry.
type LivenessMonitor struct {
	registry       domain.AccountRegistry
	interval       time.Duration
	connectTimeout time.Duration
	running        atomic.Bool
	logger         zerolog.Logger
	metrics        *metrics.Metrics
}

// NewLivenessMonitor creates a liveness monitor
func NewLivenessMonitor(
	registry domain.AccountRegistry,
	limits *config.LimitsConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *LivenessMonitor {
	return &LivenessMonitor{
		registry:       registry,
		interval:       limits.LivenessInterval,
		connectTimeout: tgCfg.ConnectTimeout,
		logger:         logger.With().Str("component", "liveness_monitor").Logger(),
		metrics:        m,
	}
}

// Run checks accounts every interval until ctx is done
func (l *LivenessMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info().Dur("interval", l.interval).Msg("liveness monitor started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("liveness monitor stopped")
			return
		case <-ticker.C:
			go l.CheckOnce(ctx)
		}
	}
}

// CheckOnce makes one reconnect attempt for every disconnected account.
// It returns false when a previous check is still running.
func (l *LivenessMonitor) CheckOnce(ctx context.Context) bool {
	if !l.running.CompareAndSwap(false, true) {
		l.logger.Debug().Msg("previous liveness check still running, skipping")
		return false
	}
	defer l.running.Store(false)

	for _, acc := range l.registry.All() {
		if ctx.Err() != nil {
			return true
		}
		if acc.Client.IsConnected() {
			continue
		}
		l.reconnect(ctx, acc)
	}
	return true
}

func (l *LivenessMonitor) reconnect(ctx context.Context, acc *domain.Account) {
	log := l.logger.With().Str("account_id", acc.ID).Logger()
	log.Warn().Msg("account disconnected, reconnecting")

	connectCtx := ctx
	if l.connectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, l.connectTimeout)
		defer cancel()
	}

	err := acc.Client.Connect(connectCtx)
	if l.metrics != nil {
		l.metrics.RecordReconnect(err == nil)
	}
	if err != nil {
		log.Error().Err(err).Msg("reconnect failed")
		return
	}
	log.Info().Msg("account reconnected")
}
