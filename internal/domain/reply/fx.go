package reply

import (
	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/reply/delivery/telegram"
	"github.com/s4nngr10r/tgexp/internal/domain/reply/deps"
	"github.com/s4nngr10r/tgexp/internal/domain/reply/usecase/business"
)

// Module provides the reply pipeline for fx DI
var Module = fx.Module("reply",
	fx.Provide(
		business.NewUseCase,
		func(uc *business.UseCase) deps.Responder {
			return uc
		},
		telegram.NewUpdatesHandler,
		func(h *telegram.UpdatesHandler) domain.EventHandler {
			return h
		},
	),
)
