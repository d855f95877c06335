package persona

import (
	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/llm"
)

// Module provides persona settings and the response generator for fx DI
var Module = fx.Module("persona",
	fx.Provide(
		NewStore,
		NewGenerator,
		func(p *llm.Pool) ClientProvider {
			return p
		},
		func(g *Generator) domain.ResponseGenerator {
			return g
		},
	),
)
