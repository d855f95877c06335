package http

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/pkg/httputil"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// healthChecker is implemented by publishers that can report their state
type healthChecker interface {
	IsHealthy() bool
}

// dbPingTimeout bounds the session database check
const dbPingTimeout = 2 * time.Second

// HealthHandler handles HTTP health check requests
type HealthHandler struct {
	registry  domain.AccountRegistry
	publisher domain.ActivityPublisher
	db        *gorm.DB
	logger    zerolog.Logger
}

// HealthHandlerParams defines parameters for HealthHandler with optional dependencies
type HealthHandlerParams struct {
	fx.In

	Registry  domain.AccountRegistry
	Publisher domain.ActivityPublisher `optional:"true"`
	DB        *gorm.DB                 `optional:"true"`
	Logger    zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(params HealthHandlerParams) *HealthHandler {
	return &HealthHandler{
		registry:  params.Registry,
		publisher: params.Publisher,
		db:        params.DB,
		logger:    params.Logger,
	}
}

// Handle handles the health check request for fasthttp
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	components := h.checkComponents(ctx)
	status := determineOverallStatus(components)

	statusCode := fasthttp.StatusOK
	if status == HealthStatusUnhealthy {
		statusCode = fasthttp.StatusServiceUnavailable
	}

	logEvent := h.logger.Debug()
	if status == HealthStatusUnhealthy {
		logEvent = h.logger.Warn()
	} else if status == HealthStatusDegraded {
		logEvent = h.logger.Info()
	}
	logEvent.
		Str("status", string(status)).
		Int("status_code", statusCode).
		Msg("Health check completed")

	httputil.WriteJSON(ctx, HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	}, statusCode)
}

func (h *HealthHandler) checkComponents(ctx context.Context) []ComponentHealth {
	components := make([]ComponentHealth, 0, 3)

	accounts := h.registry.All()
	connected := 0
	for _, acc := range accounts {
		if acc.Client.IsConnected() {
			connected++
		}
	}

	accountHealth := ComponentHealth{
		Name:    "telegram_accounts",
		Healthy: connected > 0,
		Message: fmt.Sprintf("%d of %d accounts connected", connected, len(accounts)),
	}
	if len(accounts) == 0 {
		accountHealth.Message = "No Telegram accounts loaded"
	}
	components = append(components, accountHealth)

	if checker, ok := h.publisher.(healthChecker); ok {
		healthy := checker.IsHealthy()
		msg := ""
		if !healthy {
			msg = "Kafka producer is not healthy"
		}
		components = append(components, ComponentHealth{
			Name:    "kafka_producer",
			Healthy: healthy,
			Message: msg,
		})
	}

	// A nil DB means sessions live in files
	if h.db != nil {
		components = append(components, h.checkDatabase(ctx))
	}

	return components
}

func (h *HealthHandler) checkDatabase(ctx context.Context) ComponentHealth {
	health := ComponentHealth{Name: "session_database", Healthy: true}

	sqlDB, err := h.db.DB()
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		defer cancel()
		err = sqlDB.PingContext(pingCtx)
	}
	if err != nil {
		health.Healthy = false
		health.Message = err.Error()
	}
	return health
}

func determineOverallStatus(components []ComponentHealth) HealthStatus {
	allHealthy := true
	anyHealthy := false

	for _, component := range components {
		if !component.Healthy {
			allHealthy = false
		} else {
			anyHealthy = true
		}
	}

	if allHealthy {
		return HealthStatusHealthy
	} else if anyHealthy {
		return HealthStatusDegraded
	}

	return HealthStatusUnhealthy
}
