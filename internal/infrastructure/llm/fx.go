package llm

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/config"
)

// Module provides the completion client pool for fx DI
var Module = fx.Module("llm",
	fx.Provide(NewPoolFx),
)

// NewPoolFx creates the pool from config
func NewPoolFx(cfg *config.LLMConfig, logger zerolog.Logger) *Pool {
	return NewPool(cfg.APIKey, NewHTTPFactory(cfg.BaseURL, cfg.Timeout), logger)
}
