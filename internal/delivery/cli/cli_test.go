package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	channeldeps "github.com/s4nngr10r/tgexp/internal/domain/channel/deps"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/entities"
	"github.com/s4nngr10r/tgexp/internal/domain/persona"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
)

type fakePlatform struct {
	domain.PlatformClient
	id string
}

func (f *fakePlatform) AccountID() string { return f.id }
func (f *fakePlatform) IsConnected() bool { return true }

type fakeAccounts struct {
	accounts  []*domain.Account
	stored    []string
	created   telegram.Credentials
	createErr error
	prompter  telegram.Prompter
	loads     int
}

func (f *fakeAccounts) Get(id string) (*domain.Account, bool) {
	for _, acc := range f.accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return nil, false
}

func (f *fakeAccounts) All() []*domain.Account { return f.accounts }

func (f *fakeAccounts) StoredAccounts() ([]string, error) { return f.stored, nil }

func (f *fakeAccounts) LoadSessions(context.Context) *telegram.LoadReport {
	f.loads++
	return &telegram.LoadReport{Total: len(f.accounts), Successful: len(f.accounts), Errors: map[string]error{}}
}

func (f *fakeAccounts) CreateSession(_ context.Context, creds telegram.Credentials, p telegram.Prompter) (*domain.Account, error) {
	f.created = creds
	if f.createErr != nil {
		return nil, f.createErr
	}
	acc := newAccount(creds.APIID, "Ivan", 42)
	acc.Phone = creds.Phone
	f.accounts = append(f.accounts, acc)
	return acc, nil
}

func (f *fakeAccounts) SetPrompter(p telegram.Prompter) { f.prompter = p }

type fakeChannels struct {
	dialogs  []domain.DialogInfo
	synced   []string
	refs     []domain.ChannelReference
	syncErr  error
	reporter channeldeps.ProgressReporter
}

func (f *fakeChannels) ListChannels(context.Context, string) ([]domain.DialogInfo, error) {
	return f.dialogs, nil
}

func (f *fakeChannels) Sync(_ context.Context, acc *domain.Account, refs []domain.ChannelReference, p channeldeps.ProgressReporter) (*entities.JoinSyncSummary, error) {
	f.synced = append(f.synced, acc.ID)
	f.refs = refs
	f.reporter = p
	return &entities.JoinSyncSummary{AccountID: acc.ID, Joined: len(refs)}, f.syncErr
}

func (f *fakeChannels) SyncAll(ctx context.Context, refs []domain.ChannelReference, p channeldeps.ProgressReporter) (map[string]*entities.JoinSyncSummary, error) {
	return nil, errors.New("unused")
}

type fakeReferences struct {
	path string
	refs []domain.ChannelReference
}

func (f *fakeReferences) Load(path string) ([]domain.ChannelReference, error) {
	f.path = path
	return f.refs, nil
}

type fakeGenerator struct {
	reply string
	calls int
}

func (f *fakeGenerator) Generate(context.Context, string, string, string, string) (string, bool) {
	f.calls++
	return f.reply, f.reply != ""
}

type fakeKeys struct {
	key string
}

func (f *fakeKeys) SetAPIKey(key string) { f.key = key }
func (f *fakeKeys) HasAPIKey() bool      { return f.key != "" }

type fakeMonitor struct {
	runs    int
	stopped int
	block   bool
}

func (f *fakeMonitor) Run(ctx context.Context) {
	f.runs++
	if !f.block {
		return
	}
	<-ctx.Done()
	f.stopped++
}

type fixture struct {
	accounts  *fakeAccounts
	channels  *fakeChannels
	refs      *fakeReferences
	generator *fakeGenerator
	keys      *fakeKeys
	monitor   *fakeMonitor
	persona   *persona.Store
}

func newFixture() *fixture {
	return &fixture{
		accounts:  &fakeAccounts{},
		channels:  &fakeChannels{},
		refs:      &fakeReferences{},
		generator: &fakeGenerator{},
		keys:      &fakeKeys{},
		monitor:   &fakeMonitor{},
		persona:   persona.NewStore(&config.PersonaConfig{Personality: "default", Formality: "neutral"}),
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Accounts:   f.accounts,
		Channels:   f.channels,
		References: f.refs,
		Persona:    f.persona,
		Generator:  f.generator,
		Keys:       f.keys,
		Monitor:    f.monitor,
		Telegram:   &config.TelegramConfig{SessionsDir: "./sessions", ChannelsFile: "channels.json"},
	}
}

func (f *fixture) run(ctx context.Context, fn func(ctx context.Context, d Deps) error) error {
	return fn(ctx, f.deps())
}

func newAccount(id, name string, userID int64) *domain.Account {
	return &domain.Account{
		ID:     id,
		Client: &fakePlatform{id: id},
		Self:   &domain.Identity{ID: userID, FirstName: name},
	}
}

func executeCLI(t *testing.T, f *fixture, input string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd(f.run, telegram.NewConsolePrompterWithIO(strings.NewReader(input), io.Discard))
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), err
}

func lineWith(out, substr string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

func TestSessionListMarksLoadedSessions(t *testing.T) {
	f := newFixture()
	f.accounts.stored = []string{"111", "222"}
	f.accounts.accounts = []*domain.Account{newAccount("111", "Ivan", 1)}

	out, err := executeCLI(t, f, "", "session", "list")
	require.NoError(t, err)
	assert.NotContains(t, lineWith(out, "API ID: 111"), "not loaded")
	assert.Contains(t, lineWith(out, "API ID: 222"), "not loaded")
	assert.Zero(t, f.accounts.loads)
}

func TestSessionCreatePromptsForMissingFields(t *testing.T) {
	f := newFixture()
	f.channels.dialogs = []domain.DialogInfo{{ID: 100, Title: "Go News", IsChannel: true, LinkedChatID: 200}}

	out, err := executeCLI(t, f, "abcdef\n+79991234567\n", "session", "create", "--api-id", "12345")
	require.NoError(t, err)

	assert.Equal(t, telegram.Credentials{APIID: "12345", APIHash: "abcdef", Phone: "+79991234567"}, f.accounts.created)
	assert.Contains(t, out, "Successfully logged in as Ivan (42)")
	assert.Contains(t, out, "Phone: +79****4567")
	assert.Contains(t, out, "Go News")
	assert.Contains(t, out, "Total channels: 1")
}

func TestSessionCreateReportsFailure(t *testing.T) {
	f := newFixture()
	f.accounts.createErr = domain.ErrAuthenticationFailed

	out, err := executeCLI(t, f, "", "session", "create", "--api-id", "1", "--api-hash", "h", "--phone", "+1")
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.Contains(t, out, "Error creating session")
}

func TestChannelsListNeedsAccountWithSeveralSessions(t *testing.T) {
	f := newFixture()
	f.accounts.accounts = []*domain.Account{newAccount("1", "A", 1), newAccount("2", "B", 2)}

	_, err := executeCLI(t, f, "", "channels", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--account")
	assert.Equal(t, 1, f.accounts.loads)
}

func TestChannelsListUnknownAccount(t *testing.T) {
	f := newFixture()
	f.accounts.accounts = []*domain.Account{newAccount("1", "A", 1)}

	_, err := executeCLI(t, f, "", "channels", "list", "--account", "9")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestChannelsSyncUsesConfiguredFile(t *testing.T) {
	f := newFixture()
	f.accounts.accounts = []*domain.Account{newAccount("1", "A", 1)}
	f.refs.refs = []domain.ChannelReference{"@golang", "+hash"}

	_, err := executeCLI(t, f, "", "channels", "sync", "--account", "1")
	require.NoError(t, err)

	assert.Equal(t, "channels.json", f.refs.path)
	assert.Equal(t, []string{"1"}, f.channels.synced)
	assert.Equal(t, f.refs.refs, f.channels.refs)
	assert.IsType(t, &Reporter{}, f.channels.reporter)
}

func TestChannelsSyncFileFlag(t *testing.T) {
	f := newFixture()
	f.accounts.accounts = []*domain.Account{newAccount("1", "A", 1)}

	_, err := executeCLI(t, f, "", "channels", "sync", "--account", "1", "--file", "other.yaml")
	require.NoError(t, err)
	assert.Equal(t, "other.yaml", f.refs.path)
}

func TestChannelsSyncAllWithoutSessions(t *testing.T) {
	f := newFixture()

	out, err := executeCLI(t, f, "", "channels", "sync")
	require.ErrorIs(t, err, domain.ErrNoActiveAccounts)
	assert.Contains(t, out, "No active sessions found")
}

func TestMonitorRequiresAPIKey(t *testing.T) {
	f := newFixture()
	f.accounts.accounts = []*domain.Account{newAccount("1", "A", 1)}

	_, err := executeCLI(t, f, "", "monitor")
	require.ErrorIs(t, err, errMissingAPIKey)
	assert.Zero(t, f.monitor.runs)
}

func TestMonitorRequiresSessions(t *testing.T) {
	f := newFixture()
	f.keys.key = "sk"

	_, err := executeCLI(t, f, "", "monitor")
	require.ErrorIs(t, err, domain.ErrNoActiveAccounts)
}

func TestMonitorRunsLiveness(t *testing.T) {
	f := newFixture()
	f.keys.key = "sk"
	f.accounts.accounts = []*domain.Account{newAccount("1", "A", 1)}

	out, err := executeCLI(t, f, "", "monitor")
	require.NoError(t, err)
	assert.Equal(t, 1, f.monitor.runs)
	assert.Contains(t, out, "listening for messages in 1 session(s)")
}

func TestPersonaShow(t *testing.T) {
	f := newFixture()

	out, err := executeCLI(t, f, "", "persona", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "personality: default")
	assert.Contains(t, out, "formality: neutral")
}

func TestPersonaTestSetsSettingsAndGenerates(t *testing.T) {
	f := newFixture()
	f.generator.reply = "Интересная мысль"

	out, err := executeCLI(t, f, "", "persona", "test", "--personality", "witty", "--formality", "casual")
	require.NoError(t, err)

	assert.Equal(t, persona.Settings{Personality: "witty", Formality: "casual"}, f.persona.Get())
	assert.Contains(t, out, "witty personality, casual formality")
	assert.Contains(t, out, "'Интересная мысль'")
}

func TestPersonaTestRejectsUnknownPersonality(t *testing.T) {
	f := newFixture()

	_, err := executeCLI(t, f, "", "persona", "test", "--personality", "grumpy")
	require.Error(t, err)
	assert.Zero(t, f.generator.calls)
	assert.Equal(t, "default", f.persona.Get().Personality)
}

func TestPersonaTestFailedGeneration(t *testing.T) {
	f := newFixture()

	out, err := executeCLI(t, f, "", "persona", "test")
	require.ErrorIs(t, err, errSampleFailed)
	assert.Contains(t, out, "Check your API key")
}
