package cache

import (
	"go.uber.org/fx"
)

// Module provides cache components for fx DI
var Module = fx.Module("cache",
	fx.Provide(NewResponseLimiter),
)
