package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/pkg/httputil"
)

type stubClient struct {
	domain.PlatformClient
	connected bool
}

func (c stubClient) IsConnected() bool { return c.connected }

type stubRegistry struct {
	accounts []*domain.Account
}

func (r stubRegistry) Get(id string) (*domain.Account, bool) {
	for _, a := range r.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (r stubRegistry) All() []*domain.Account { return r.accounts }

type stubPublisher struct{ healthy bool }

func (stubPublisher) Publish(context.Context, domain.ActivityEvent) error { return nil }
func (p stubPublisher) IsHealthy() bool                                   { return p.healthy }

func newRouter(reg domain.AccountRegistry, pub domain.ActivityPublisher) *router.Router {
	logger := zerolog.Nop()
	r := NewRouter(
		NewHealthHandler(HealthHandlerParams{Registry: reg, Publisher: pub, Logger: logger}),
		NewAccountsHandler(reg, logger),
		logger,
	)
	rt := router.New()
	r.RegisterRoutes(rt)
	return rt
}

func get(rt *router.Router, uri string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(uri)
	rt.Handler(&ctx)
	return &ctx
}

func TestHealthStatuses(t *testing.T) {
	up := &domain.Account{ID: "1", Client: stubClient{connected: true}}
	down := &domain.Account{ID: "2", Client: stubClient{}}

	tests := []struct {
		name       string
		accounts   []*domain.Account
		publisher  domain.ActivityPublisher
		wantStatus HealthStatus
		wantCode   int
	}{
		{"connected account", []*domain.Account{up, down}, nil, HealthStatusHealthy, fasthttp.StatusOK},
		{"no accounts", nil, nil, HealthStatusUnhealthy, fasthttp.StatusServiceUnavailable},
		{"all disconnected", []*domain.Account{down}, nil, HealthStatusUnhealthy, fasthttp.StatusServiceUnavailable},
		{"broken producer", []*domain.Account{up}, stubPublisher{healthy: false}, HealthStatusDegraded, fasthttp.StatusOK},
		{"healthy producer", []*domain.Account{up}, stubPublisher{healthy: true}, HealthStatusHealthy, fasthttp.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := get(newRouter(stubRegistry{accounts: tt.accounts}, tt.publisher), "/health")

			assert.Equal(t, tt.wantCode, ctx.Response.StatusCode())

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}
}

func TestAccountsList(t *testing.T) {
	reg := stubRegistry{accounts: []*domain.Account{{
		ID:     "12345",
		Phone:  "+79991234567",
		Client: stubClient{connected: true},
		Self:   &domain.Identity{ID: 1, FirstName: "Ivan", Username: "ivan"},
	}}}

	ctx := get(newRouter(reg, nil), "/accounts")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp struct {
		Success bool          `json:"success"`
		Data    []AccountView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 1)

	got := resp.Data[0]
	assert.Equal(t, "12345", got.ID)
	assert.Equal(t, "Ivan", got.Name)
	assert.True(t, got.Connected)
	assert.NotEqual(t, "+79991234567", got.Phone, "phone must be masked")
}

func TestAccountsGetNotFound(t *testing.T) {
	ctx := get(newRouter(stubRegistry{}, nil), "/accounts/404")

	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "404")
}

func TestAccountsGet(t *testing.T) {
	reg := stubRegistry{accounts: []*domain.Account{{ID: "7", Client: stubClient{}}}}

	ctx := get(newRouter(reg, nil), "/accounts/7")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"id":"7"`)
}
