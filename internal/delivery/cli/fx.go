package cli

import (
	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/internal/domain/channel/usecase/business"
	"github.com/s4nngr10r/tgexp/internal/domain/persona"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/llm"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
)

// Module binds application components to the interfaces the commands use
var Module = fx.Module("cli",
	fx.Provide(
		func(m *telegram.AccountManager) Accounts { return m },
		func(uc *business.UseCase) Channels { return uc },
		func(s *persona.Store) PersonaSettings { return s },
		func(p *llm.Pool) APIKeys { return p },
		func(l *telegram.LivenessMonitor) Monitor { return l },
	),
)
