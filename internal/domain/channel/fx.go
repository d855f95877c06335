package channel

import (
	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/internal/domain/channel/repository/file"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/usecase/business"
)

// Module provides channel domain components for fx DI
var Module = fx.Module("channel",
	fx.Provide(
		file.NewRepository,
		business.NewSleeper,
		business.NewUseCase,
	),
)
