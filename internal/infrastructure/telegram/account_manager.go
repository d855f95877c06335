package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
	"github.com/s4nngr10r/tgexp/internal/utils"
)

// ClientFactory creates platform clients (can be overridden for testing)
type ClientFactory func(cfg MTProtoClientConfig) (domain.PlatformClient, error)

// StorageFactory opens the session storage of an account
type StorageFactory func(ctx context.Context, accountID, phone string) (session.Storage, error)

// LoadReport summarizes a LoadSessions run
type LoadReport struct {
	Total      int
	Successful int
	Failed     int
	Errors     map[string]error
}

// AccountManager holds the live accounts keyed by id, in load order
type AccountManager struct {
	accounts   map[string]*domain.Account
	accountIDs []string
	mu         sync.RWMutex

	handlerMu sync.RWMutex
	handler   domain.EventHandler

	creds          *CredentialsStore
	clientFactory  ClientFactory
	storageFactory StorageFactory
	prompter       Prompter
	connectTimeout time.Duration

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewAccountManager creates an account manager. A nil db keeps sessions
// in files next to the credentials.
func NewAccountManager(cfg *config.TelegramConfig, db *gorm.DB, logger zerolog.Logger, m *metrics.Metrics) *AccountManager {
	manager := &AccountManager{
		accounts:       make(map[string]*domain.Account),
		creds:          NewCredentialsStore(cfg.SessionsDir),
		clientFactory:  defaultClientFactory,
		connectTimeout: cfg.ConnectTimeout,
		logger:         logger.With().Str("component", "account_manager").Logger(),
		metrics:        m,
	}

	if db != nil {
		manager.storageFactory = func(ctx context.Context, accountID, phone string) (session.Storage, error) {
			return NewPostgresSessionStorage(ctx, db, accountID, phone)
		}
	} else {
		manager.storageFactory = func(_ context.Context, accountID, _ string) (session.Storage, error) {
			return NewFileSessionStorage(cfg.SessionsDir, accountID)
		}
	}

	return manager
}

func defaultClientFactory(cfg MTProtoClientConfig) (domain.PlatformClient, error) {
	return NewMTProtoClient(cfg)
}

// SetEventHandler sets the consumer of inbound events for every account
func (m *AccountManager) SetEventHandler(h domain.EventHandler) {
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	m.handler = h
}

// SetPrompter enables interactive login for sessions that need it
func (m *AccountManager) SetPrompter(p Prompter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompter = p
}

// HandleEvent forwards an event to the configured handler
func (m *AccountManager) HandleEvent(ctx context.Context, ev *domain.InboundEvent) {
	m.handlerMu.RLock()
	h := m.handler
	m.handlerMu.RUnlock()

	if h != nil {
		h.HandleEvent(ctx, ev)
	}
}

// Get returns the account with the given id
func (m *AccountManager) Get(accountID string) (*domain.Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[accountID]
	return acc, ok
}

// All returns accounts in load order
func (m *AccountManager) All() []*domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(m.accountIDs))
	for _, id := range m.accountIDs {
		accounts = append(accounts, m.accounts[id])
	}
	return accounts
}

// Add registers a connected account
func (m *AccountManager) Add(acc *domain.Account) error {
	if acc == nil || acc.Client == nil {
		return fmt.Errorf("cannot add nil account")
	}
	if acc.ID == "" {
		return fmt.Errorf("account ID is empty")
	}

	m.mu.Lock()
	if _, exists := m.accounts[acc.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrAccountAlreadyExists, acc.ID)
	}
	m.accounts[acc.ID] = acc
	m.accountIDs = append(m.accountIDs, acc.ID)
	m.mu.Unlock()

	m.updateGauge()
	return nil
}

// Remove disconnects and forgets an account
func (m *AccountManager) Remove(ctx context.Context, accountID string) error {
	m.mu.Lock()
	acc, exists := m.accounts[accountID]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}
	delete(m.accounts, accountID)
	for i, id := range m.accountIDs {
		if id == accountID {
			m.accountIDs = append(m.accountIDs[:i], m.accountIDs[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.updateGauge()
	return acc.Client.Disconnect(ctx)
}

// StoredAccounts returns the ids that have a credentials file
func (m *AccountManager) StoredAccounts() ([]string, error) {
	return m.creds.List()
}

// LoadSessions connects every stored account that is not loaded yet.
// Accounts that fail to connect are reported and skipped.
func (m *AccountManager) LoadSessions(ctx context.Context) *LoadReport {
	report := &LoadReport{Errors: make(map[string]error)}

	ids, err := m.creds.List()
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to list stored sessions")
		report.Errors[""] = err
		return report
	}

	for _, id := range ids {
		if _, loaded := m.Get(id); loaded {
			continue
		}
		report.Total++

		if err := ctx.Err(); err != nil {
			report.Errors[id] = err
			report.Failed++
			continue
		}

		creds, err := m.creds.Load(id)
		if err != nil {
			m.logger.Warn().Err(err).Str("account_id", id).Msg("failed to load credentials")
			report.Errors[id] = err
			report.Failed++
			continue
		}

		if _, err := m.connect(ctx, id, creds, nil); err != nil {
			report.Errors[id] = err
			report.Failed++
			continue
		}
		report.Successful++
	}

	m.logger.Info().
		Int("total", report.Total).
		Int("successful", report.Successful).
		Int("failed", report.Failed).
		Msg("session loading completed")

	return report
}

// CreateSession stores credentials and logs a new account in. The
// prompter is asked for the login code and 2FA password.
func (m *AccountManager) CreateSession(ctx context.Context, creds Credentials, prompter Prompter) (*domain.Account, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if prompter == nil {
		return nil, fmt.Errorf("interactive prompt is required to create a session")
	}

	id := creds.APIID
	if _, loaded := m.Get(id); loaded {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountAlreadyExists, id)
	}

	if err := m.creds.Save(id, creds); err != nil {
		return nil, err
	}

	return m.connect(ctx, id, creds, prompter)
}

// connect builds a client for the account, connects it and registers it
func (m *AccountManager) connect(ctx context.Context, id string, creds Credentials, prompter Prompter) (*domain.Account, error) {
	logger := m.logger.With().
		Str("account_id", id).
		Str("phone", utils.MaskPhoneNumber(creds.Phone)).
		Logger()

	if prompter == nil {
		m.mu.RLock()
		prompter = m.prompter
		m.mu.RUnlock()
	}

	storage, err := m.storageFactory(ctx, id, creds.Phone)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to open session storage")
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	client, err := m.clientFactory(MTProtoClientConfig{
		AccountID:   id,
		Credentials: creds,
		Storage:     storage,
		Prompter:    prompter,
		Handler:     m,
		Logger:      m.logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to create MTProto client")
		return nil, fmt.Errorf("create client: %w", err)
	}

	connectCtx := ctx
	if m.connectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, m.connectTimeout)
		defer cancel()
	}

	if err := client.Connect(connectCtx); err != nil {
		logger.Warn().Err(err).Msg("failed to connect account")
		return nil, fmt.Errorf("connect: %w", err)
	}

	self, err := client.Self(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to fetch account identity")
		m.disconnect(client, logger)
		return nil, fmt.Errorf("self: %w", err)
	}

	acc := &domain.Account{ID: id, Phone: creds.Phone, Client: client, Self: self}
	if err := m.Add(acc); err != nil {
		logger.Warn().Err(err).Msg("failed to add account to manager")
		m.disconnect(client, logger)
		return nil, fmt.Errorf("add account: %w", err)
	}

	logger.Info().Str("name", self.DisplayName()).Msg("account loaded")
	return acc, nil
}

func (m *AccountManager) disconnect(client domain.PlatformClient, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to disconnect client during cleanup")
	}
}

// Shutdown disconnects every account and returns how many disconnected
// cleanly. Accounts stay registered.
func (m *AccountManager) Shutdown(ctx context.Context) int {
	accounts := m.All()

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		disconnected int
	)
	for _, acc := range accounts {
		wg.Add(1)
		go func(acc *domain.Account) {
			defer wg.Done()
			if err := acc.Client.Disconnect(ctx); err != nil {
				m.logger.Warn().Err(err).Str("account_id", acc.ID).Msg("failed to disconnect account")
				return
			}
			mu.Lock()
			disconnected++
			mu.Unlock()
		}(acc)
	}
	wg.Wait()

	m.updateGauge()
	return disconnected
}

// ConnectedCount returns how many registered accounts are connected
func (m *AccountManager) ConnectedCount() (connected, total int) {
	for _, acc := range m.All() {
		total++
		if acc.Client.IsConnected() {
			connected++
		}
	}
	return connected, total
}

func (m *AccountManager) updateGauge() {
	if m.metrics == nil {
		return
	}
	m.metrics.UpdateAccounts(m.ConnectedCount())
}

// firstError returns any error of a report, for callers that need one
func (r *LoadReport) firstError() error {
	for _, err := range r.Errors {
		return err
	}
	return nil
}

// Err returns ErrNoActiveAccounts joined with a load failure when nothing
// could be loaded
func (r *LoadReport) Err() error {
	if r.Successful > 0 || r.Total == 0 && len(r.Errors) == 0 {
		return nil
	}
	return errors.Join(domain.ErrNoActiveAccounts, r.firstError())
}

var (
	_ domain.AccountRegistry = (*AccountManager)(nil)
	_ domain.EventHandler    = (*AccountManager)(nil)
)
