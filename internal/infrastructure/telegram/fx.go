package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
)

// Module provides the Telegram account manager and liveness monitor for fx DI
var Module = fx.Module("telegram",
	fx.Provide(
		NewAccountManagerFx,
		func(m *AccountManager) domain.AccountRegistry { return m },
		NewLivenessMonitor,
	),
)

// NewAccountManagerFx creates an account manager that disconnects every
// account when the app stops
func NewAccountManagerFx(
	lc fx.Lifecycle,
	telegramCfg *config.TelegramConfig,
	db *gorm.DB,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *AccountManager {
	manager := NewAccountManager(telegramCfg, db, logger, m)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			disconnected := manager.Shutdown(ctx)
			logger.Info().
				Int("disconnected", disconnected).
				Msg("Telegram accounts disconnected")
			return nil
		},
	})

	return manager
}
