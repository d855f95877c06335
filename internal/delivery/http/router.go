package http

import (
	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/pkg/httputil"
)

// Router registers the admin HTTP routes
type Router struct {
	health   *HealthHandler
	accounts *AccountsHandler
	logger   zerolog.Logger
}

// NewRouter creates a new admin router
func NewRouter(health *HealthHandler, accounts *AccountsHandler, logger zerolog.Logger) *Router {
	return &Router{
		health:   health,
		accounts: accounts,
		logger:   logger.With().Str("component", "http_router").Logger(),
	}
}

// RegisterRoutes registers routes on r, usually the server's router
func (r *Router) RegisterRoutes(rt httputil.Registrar) {
	api := httputil.NewMiddlewareGroup(rt).Use(
		httputil.Recover(r.logger),
		httputil.AccessLog(r.logger),
	)

	api.GET("/health", r.health.Handle)
	api.GET("/accounts", r.accounts.List)
	api.GET("/accounts/{id}", r.accounts.Get)
}
