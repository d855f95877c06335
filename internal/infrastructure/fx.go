package infrastructure

import (
	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/internal/infrastructure/cache"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/database"
	httpfx "github.com/s4nngr10r/tgexp/internal/infrastructure/http"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/kafka"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/llm"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/logger"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
)

// Module aggregates all infrastructure modules
var Module = fx.Module("infrastructure",
	logger.Module,
	database.Module, // Must be before telegram (telegram depends on *gorm.DB)
	metrics.Module,
	telegram.Module,
	kafka.Module,
	httpfx.Module,
	cache.Module,
	llm.Module,
)
