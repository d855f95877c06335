package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
)

type staticRegistry struct {
	accounts []*domain.Account
}

func (r staticRegistry) Get(id string) (*domain.Account, bool) {
	for _, a := range r.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (r staticRegistry) All() []*domain.Account {
	return r.accounts
}

func newTestMonitor(reg domain.AccountRegistry, m *metrics.Metrics) *LivenessMonitor {
	return NewLivenessMonitor(
		reg,
		&config.LimitsConfig{LivenessInterval: 10 * time.Millisecond},
		&config.TelegramConfig{ConnectTimeout: time.Second},
		zerolog.Nop(),
		m,
	)
}

func TestCheckOnceReconnectsOnlyDisconnected(t *testing.T) {
	up := &mockPlatformClient{accountID: "1", connected: true}
	down := &mockPlatformClient{accountID: "2"}
	m := metrics.NewMetrics(prometheus.NewRegistry())

	monitor := newTestMonitor(staticRegistry{accounts: []*domain.Account{
		{ID: "1", Client: up},
		{ID: "2", Client: down},
	}}, m)

	require.True(t, monitor.CheckOnce(context.Background()))

	upConnects, _ := up.stats()
	downConnects, _ := down.stats()
	assert.Equal(t, 0, upConnects)
	assert.Equal(t, 1, downConnects)
	assert.True(t, down.IsConnected())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccountReconnections.WithLabelValues("success")))

	require.True(t, monitor.CheckOnce(context.Background()))
	downConnects, _ = down.stats()
	assert.Equal(t, 1, downConnects, "a reconnected account is left alone")
}

func TestCheckOnceKeepsFailingAccounts(t *testing.T) {
	failing := &mockPlatformClient{accountID: "9", connectErr: errors.New("network unreachable")}
	reg := staticRegistry{accounts: []*domain.Account{{ID: "9", Client: failing}}}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	monitor := newTestMonitor(reg, m)

	monitor.CheckOnce(context.Background())
	monitor.CheckOnce(context.Background())

	connects, _ := failing.stats()
	assert.Equal(t, 2, connects, "one attempt per check")
	assert.Len(t, reg.All(), 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccountReconnections.WithLabelValues("failure")))
}

func TestCheckOnceSkipsOverlappingRuns(t *testing.T) {
	down := &mockPlatformClient{accountID: "2"}
	monitor := newTestMonitor(staticRegistry{accounts: []*domain.Account{{ID: "2", Client: down}}}, nil)

	monitor.running.Store(true)
	assert.False(t, monitor.CheckOnce(context.Background()))

	connects, _ := down.stats()
	assert.Equal(t, 0, connects)
}

func TestRunStopsOnCancel(t *testing.T) {
	down := &mockPlatformClient{accountID: "2"}
	monitor := newTestMonitor(staticRegistry{accounts: []*domain.Account{{ID: "2", Client: down}}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	require.Eventually(t, down.IsConnected, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
