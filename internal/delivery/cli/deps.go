package cli

import (
	"context"

	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	channeldeps "github.com/s4nngr10r/tgexp/internal/domain/channel/deps"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/entities"
	"github.com/s4nngr10r/tgexp/internal/domain/persona"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
)

// Runner builds the application, calls fn with its components and stops
// it again once fn returns
type Runner func(ctx context.Context, fn func(ctx context.Context, d Deps) error) error

// Accounts manages the Telegram sessions
type Accounts interface {
	domain.AccountRegistry
	StoredAccounts() ([]string, error)
	LoadSessions(ctx context.Context) *telegram.LoadReport
	CreateSession(ctx context.Context, creds telegram.Credentials, prompter telegram.Prompter) (*domain.Account, error)
	SetPrompter(p telegram.Prompter)
}

// Channels lists and joins channels
type Channels interface {
	ListChannels(ctx context.Context, accountID string) ([]domain.DialogInfo, error)
	Sync(ctx context.Context, acc *domain.Account, refs []domain.ChannelReference, progress channeldeps.ProgressReporter) (*entities.JoinSyncSummary, error)
	SyncAll(ctx context.Context, refs []domain.ChannelReference, progress channeldeps.ProgressReporter) (map[string]*entities.JoinSyncSummary, error)
}

// PersonaSettings holds the active reply personality
type PersonaSettings interface {
	Get() persona.Settings
	Set(personality, formality string) error
}

// APIKeys manages the completion service key
type APIKeys interface {
	SetAPIKey(apiKey string)
	HasAPIKey() bool
}

// Monitor keeps the sessions alive while the responder runs
type Monitor interface {
	Run(ctx context.Context)
}

// Console reads operator input line by line
type Console interface {
	telegram.Prompter
	Line(ctx context.Context, prompt string) (string, error)
}

// Deps are the application components used by the commands
type Deps struct {
	fx.In

	Accounts   Accounts
	Channels   Channels
	References channeldeps.ReferenceRepository
	Persona    PersonaSettings
	Generator  domain.ResponseGenerator
	Keys       APIKeys
	Monitor    Monitor
	Telegram   *config.TelegramConfig
}
