package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/delivery/cli"
	httpdelivery "github.com/s4nngr10r/tgexp/internal/delivery/http"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/channel"
	"github.com/s4nngr10r/tgexp/internal/domain/persona"
	"github.com/s4nngr10r/tgexp/internal/domain/reply"
	"github.com/s4nngr10r/tgexp/internal/infrastructure"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
)

// CreateApp creates the fx application options
func CreateApp(opts ...fx.Option) fx.Option {
	return fx.Options(
		fx.Provide(
			config.Out,
			context.Background,
		),
		infrastructure.Module,
		// Domain modules
		channel.Module,
		persona.Module,
		reply.Module, // Must be after persona.Module (depends on ResponseGenerator)
		// Delivery
		httpdelivery.Module,
		cli.Module,
		// Inbound updates reach the reply handler through the account manager
		fx.Invoke(func(m *telegram.AccountManager, h domain.EventHandler) {
			m.SetEventHandler(h)
		}),
		fx.Options(opts...),
	)
}

// Run starts the application, hands its components to fn and stops the
// application once fn returns
func Run(ctx context.Context, fn func(ctx context.Context, d cli.Deps) error) error {
	var deps cli.Deps

	app := fx.New(
		CreateApp(fx.Invoke(func(d cli.Deps) { deps = d })),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	runErr := fn(ctx, deps)

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("stop application: %w", err)
	}

	return runErr
}
