package llm

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

// Factory builds a completion client for an API key
type Factory func(apiKey string) domain.CompletionClient

// Pool hands out one lazily created completion client per account.
// Changing the API key drops every cached client.
type Pool struct {
	mu      sync.Mutex
	apiKey  string
	clients map[string]domain.CompletionClient
	factory Factory
	warned  bool
	logger  zerolog.Logger
}

// NewPool creates a pool with the initial key
func NewPool(apiKey string, factory Factory, logger zerolog.Logger) *Pool {
	return &Pool{
		apiKey:  apiKey,
		clients: make(map[string]domain.CompletionClient),
		factory: factory,
		logger:  logger.With().Str("component", "completion_pool").Logger(),
	}
}

// NewHTTPFactory returns a Factory creating HTTP clients against baseURL
func NewHTTPFactory(baseURL string, timeout time.Duration) Factory {
	return func(apiKey string) domain.CompletionClient {
		return NewClient(baseURL, apiKey, timeout)
	}
}

// Client returns the cached client for accountID, creating it on first use
func (p *Pool) Client(accountID string) (domain.CompletionClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.apiKey == "" {
		if !p.warned {
			p.logger.Error().Msg("completion API key is not set, replies are disabled until it is configured")
			p.warned = true
		}
		return nil, domain.ErrMissingAPIKey
	}

	if c, ok := p.clients[accountID]; ok {
		return c, nil
	}

	c := p.factory(p.apiKey)
	p.clients[accountID] = c
	p.logger.Debug().Str("account_id", accountID).Msg("created completion client")
	return c, nil
}

// SetAPIKey replaces the key and invalidates all cached clients
func (p *Pool) SetAPIKey(apiKey string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.apiKey = apiKey
	p.clients = make(map[string]domain.CompletionClient)
	p.warned = false
	p.logger.Info().Msg("completion API key updated, client cache cleared")
}

// HasAPIKey reports whether a key is configured
func (p *Pool) HasAPIKey() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apiKey != ""
}

// Size returns the number of cached clients
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}
