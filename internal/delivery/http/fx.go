package http

import (
	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/internal/infrastructure/http/server"
)

// Module provides admin HTTP handlers and registers their routes
var Module = fx.Module("http_delivery",
	fx.Provide(
		NewHealthHandler,
		NewAccountsHandler,
		NewRouter,
	),
	fx.Invoke(func(r *Router, srv *server.Server) {
		r.RegisterRoutes(srv.Router)
	}),
)
