package business

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/entities"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
)

// mockPlatformClient answers joins from a table keyed by username or invite hash
type mockPlatformClient struct {
	id      string
	results map[string]error
	dialogs []domain.DialogInfo
	calls   []string
}

func (m *mockPlatformClient) AccountID() string                    { return m.id }
func (m *mockPlatformClient) Connect(context.Context) error        { return nil }
func (m *mockPlatformClient) Disconnect(context.Context) error     { return nil }
func (m *mockPlatformClient) IsConnected() bool                    { return true }
func (m *mockPlatformClient) Self(context.Context) (*domain.Identity, error) {
	return &domain.Identity{ID: 1, FirstName: "Test"}, nil
}
func (m *mockPlatformClient) ListDialogs(context.Context) ([]domain.DialogInfo, error) {
	return m.dialogs, nil
}
func (m *mockPlatformClient) JoinPublic(_ context.Context, username string) (string, error) {
	m.calls = append(m.calls, "public:"+username)
	return username, m.results[username]
}
func (m *mockPlatformClient) JoinInvite(_ context.Context, hash string) (string, error) {
	m.calls = append(m.calls, "invite:"+hash)
	return hash, m.results[hash]
}
func (m *mockPlatformClient) GetFullChannel(context.Context, int64) (*domain.ChannelFull, error) {
	return nil, errors.New("not implemented")
}
func (m *mockPlatformClient) GetHistory(context.Context, int64, int) ([]domain.HistoryMessage, error) {
	return nil, nil
}
func (m *mockPlatformClient) SendMessage(context.Context, int64, string, int) error { return nil }

type mockRegistry struct {
	accounts []*domain.Account
}

func (r *mockRegistry) Get(id string) (*domain.Account, bool) {
	for _, a := range r.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (r *mockRegistry) All() []*domain.Account { return r.accounts }

// recordingSleeper never blocks and remembers every requested duration
type recordingSleeper struct {
	slept  []time.Duration
	cancel context.CancelFunc
	limit  int
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	if s.cancel != nil && len(s.slept) >= s.limit {
		s.cancel()
	}
	return ctx.Err()
}

func (s *recordingSleeper) total() time.Duration {
	var sum time.Duration
	for _, d := range s.slept {
		sum += d
	}
	return sum
}

type recordingProgress struct {
	attempts int
	outcomes []entities.JoinOutcome
	waits    map[entities.WaitReason]int
	finished *entities.JoinSyncSummary
}

func newRecordingProgress() *recordingProgress {
	return &recordingProgress{waits: make(map[entities.WaitReason]int)}
}

func (p *recordingProgress) Begin(*domain.Account, int)                    {}
func (p *recordingProgress) Attempt(int, int, domain.ChannelReference)     { p.attempts++ }
func (p *recordingProgress) Outcome(o entities.JoinOutcome)                { p.outcomes = append(p.outcomes, o) }
func (p *recordingProgress) Waiting(r entities.WaitReason, _, _ int)       { p.waits[r]++ }
func (p *recordingProgress) Resumed(entities.WaitReason)                   {}
func (p *recordingProgress) Finish(s *entities.JoinSyncSummary)            { p.finished = s }

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (p *mockPublisher) Publish(_ context.Context, e domain.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func testLimits() *config.LimitsConfig {
	return &config.LimitsConfig{
		JoinBatchSize:    4,
		JoinBatchPause:   300 * time.Second,
		JoinPause:        time.Second,
		DefaultFloodWait: 60 * time.Second,
	}
}

func newTestUseCase(reg *mockRegistry, sleeper *recordingSleeper, pub *mockPublisher) *UseCase {
	return NewUseCase(reg, testLimits(), sleeper, pub, zerolog.Nop(), metrics.GetDefaultMetrics())
}

func TestSyncScenarioFloodWaitAndBan(t *testing.T) {
	client := &mockPlatformClient{id: "A", results: map[string]error{
		"abc123":        errors.New("floodwait wait 5 seconds"),
		"bannedchannel": errors.New("USER_BANNED_IN_CHANNEL: banned"),
	}}
	acc := &domain.Account{ID: "A", Client: client}
	sleeper := &recordingSleeper{}
	pub := &mockPublisher{}
	uc := newTestUseCase(&mockRegistry{accounts: []*domain.Account{acc}}, sleeper, pub)
	progress := newRecordingProgress()

	refs := []domain.ChannelReference{"validpublicchannel", "+abc123", "bannedchannel"}
	summary, err := uc.Sync(context.Background(), acc, refs, progress)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Joined)
	assert.Equal(t, 1, summary.FloodWaited)
	assert.Equal(t, 1, summary.Banned)
	assert.Equal(t, 3, summary.Total())
	assert.True(t, summary.Success())

	assert.Equal(t, []string{"public:validpublicchannel", "invite:abc123", "public:bannedchannel"}, client.calls)
	// 1s pause after the join, then a 5 second countdown, nothing after the last one
	assert.Equal(t, 6*time.Second, sleeper.total())
	assert.Equal(t, 5, progress.waits[entities.WaitFloodWait])
	assert.Same(t, summary, progress.finished)

	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.ActivityJoinSync, pub.events[0].Type)
	assert.Equal(t, "A", pub.events[0].AccountID)
	assert.NotEmpty(t, pub.events[0].ID)
}

func TestSyncOneOutcomePerReferenceInOrder(t *testing.T) {
	client := &mockPlatformClient{id: "A", results: map[string]error{
		"member":  domain.NewPlatformError(domain.ErrorKindAlreadyMember, nil),
		"pending": errors.New("successfully requested to join"),
		"broken":  errors.New("CHANNEL_INVALID"),
	}}
	acc := &domain.Account{ID: "A", Client: client}
	uc := newTestUseCase(&mockRegistry{accounts: []*domain.Account{acc}}, &recordingSleeper{}, &mockPublisher{})

	refs := []domain.ChannelReference{"member", "pending", "", "broken", "fresh"}
	summary, err := uc.Sync(context.Background(), acc, refs, newRecordingProgress())
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, len(refs))
	for i, o := range summary.Outcomes {
		assert.Equal(t, refs[i], o.Reference)
	}
	assert.Equal(t, len(refs), summary.Total())
	assert.Equal(t, 1, summary.AlreadyMember)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 1, summary.Joined)
	assert.Equal(t, []domain.ChannelReference{"pending"}, summary.PendingRefs)
}

func TestSyncBatchCooldownEveryFourFreshJoins(t *testing.T) {
	client := &mockPlatformClient{id: "A", results: map[string]error{
		"m1": domain.NewPlatformError(domain.ErrorKindAlreadyMember, nil),
		"m2": domain.NewPlatformError(domain.ErrorKindAlreadyMember, nil),
	}}
	acc := &domain.Account{ID: "A", Client: client}
	sleeper := &recordingSleeper{}
	uc := newTestUseCase(&mockRegistry{accounts: []*domain.Account{acc}}, sleeper, &mockPublisher{})
	progress := newRecordingProgress()

	// joins: j1 j2 m1 j3 m2 j4 -> cooldown, j5..j8 -> cooldown, j9
	refs := []domain.ChannelReference{"j1", "j2", "m1", "j3", "m2", "j4", "j5", "j6", "j7", "j8", "j9"}
	summary, err := uc.Sync(context.Background(), acc, refs, progress)
	require.NoError(t, err)

	assert.Equal(t, 9, summary.Joined)
	assert.Equal(t, 2, summary.AlreadyMember)
	assert.Equal(t, 600, progress.waits[entities.WaitBatchCooldown])

	// 10 gaps: 2 cooldowns of 300s, 8 plain pauses of 1s
	assert.Equal(t, 600*time.Second+8*time.Second, sleeper.total())
}

func TestSyncNoCooldownAfterLastReference(t *testing.T) {
	client := &mockPlatformClient{id: "A"}
	acc := &domain.Account{ID: "A", Client: client}
	sleeper := &recordingSleeper{}
	uc := newTestUseCase(&mockRegistry{accounts: []*domain.Account{acc}}, sleeper, &mockPublisher{})

	_, err := uc.Sync(context.Background(), acc, []domain.ChannelReference{"a", "b", "c", "d"}, newRecordingProgress())
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, sleeper.total())
}

func TestSyncAllFailedIsUnsuccessful(t *testing.T) {
	client := &mockPlatformClient{id: "A", results: map[string]error{
		"x": errors.New("banned"),
		"y": errors.New("nope"),
	}}
	acc := &domain.Account{ID: "A", Client: client}
	uc := newTestUseCase(&mockRegistry{accounts: []*domain.Account{acc}}, &recordingSleeper{}, &mockPublisher{})

	summary, err := uc.Sync(context.Background(), acc, []domain.ChannelReference{"x", "y"}, newRecordingProgress())
	require.NoError(t, err)
	assert.False(t, summary.Success())
	assert.Equal(t, 2, summary.Total())
}

func TestSyncStopsOnCancellation(t *testing.T) {
	client := &mockPlatformClient{id: "A"}
	acc := &domain.Account{ID: "A", Client: client}
	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &recordingSleeper{cancel: cancel, limit: 1}
	uc := newTestUseCase(&mockRegistry{accounts: []*domain.Account{acc}}, sleeper, &mockPublisher{})
	progress := newRecordingProgress()

	summary, err := uc.Sync(ctx, acc, []domain.ChannelReference{"a", "b", "c"}, progress)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Total())
	assert.NotNil(t, progress.finished)
}

func TestSyncAllRunsEveryAccount(t *testing.T) {
	a := &domain.Account{ID: "A", Client: &mockPlatformClient{id: "A"}}
	b := &domain.Account{ID: "B", Client: &mockPlatformClient{id: "B", results: map[string]error{"x": errors.New("banned")}}}
	pub := &mockPublisher{}
	uc := newTestUseCase(&mockRegistry{accounts: []*domain.Account{a, b}}, &recordingSleeper{}, pub)

	results, err := uc.SyncAll(context.Background(), []domain.ChannelReference{"x"}, newRecordingProgress())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results["A"].Joined)
	assert.Equal(t, 1, results["B"].Banned)
	assert.Len(t, pub.events, 2)
}

func TestSyncAllWithoutAccounts(t *testing.T) {
	uc := newTestUseCase(&mockRegistry{}, &recordingSleeper{}, &mockPublisher{})

	_, err := uc.SyncAll(context.Background(), []domain.ChannelReference{"x"}, newRecordingProgress())
	assert.ErrorIs(t, err, domain.ErrNoActiveAccounts)
}

func TestListChannelsFiltersPrivateChats(t *testing.T) {
	client := &mockPlatformClient{id: "A", dialogs: []domain.DialogInfo{
		{ID: 1, Title: "News", IsChannel: true, LinkedChatID: 2},
		{ID: 2, Title: "News chat", IsGroup: true},
		{ID: 3, Title: "Alice"},
	}}
	acc := &domain.Account{ID: "A", Client: client}
	uc := newTestUseCase(&mockRegistry{accounts: []*domain.Account{acc}}, &recordingSleeper{}, &mockPublisher{})

	got, err := uc.ListChannels(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "News", got[0].Title)

	_, err = uc.ListChannels(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestTimerSleeperHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSleeper().Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, NewSleeper().Sleep(context.Background(), time.Millisecond))
}
