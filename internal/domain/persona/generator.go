package persona

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
	"github.com/s4nngr10r/tgexp/internal/utils"
)

// ClientProvider hands out the completion client of an account
type ClientProvider interface {
	Client(accountID string) (domain.CompletionClient, error)
}

// Generator writes short Russian replies in the configured personality
type Generator struct {
	clients ClientProvider
	store   *Store
	cfg     *config.LLMConfig
	pick    func(n int) int
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewGenerator creates a new response generator
func NewGenerator(
	clients ClientProvider,
	store *Store,
	cfg *config.LLMConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Generator {
	return &Generator{
		clients: clients,
		store:   store,
		cfg:     cfg,
		pick:    rand.IntN,
		logger:  logger.With().Str("component", "response_generator").Logger(),
		metrics: m,
	}
}

// Generate asks the completion service for a reply. It returns false when
// the service is unavailable; a reply without Cyrillic text is replaced by
// a fallback phrase of the active personality.
func (g *Generator) Generate(ctx context.Context, accountID, chatTitle, chatBio, message string) (string, bool) {
	log := g.logger.With().Str("account_id", accountID).Str("chat", chatTitle).Logger()

	client, err := g.clients.Client(accountID)
	if err != nil {
		log.Error().Err(err).Msg("no completion client")
		return "", false
	}

	settings := g.store.Get()
	category := Classify(chatTitle, chatBio)

	log.Debug().
		Str("personality", settings.Personality).
		Str("formality", settings.Formality).
		Str("category", string(category)).
		Msg("generating response")

	start := time.Now()
	text, err := client.Complete(ctx, domain.CompletionRequest{
		Model: g.cfg.Model,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: SystemPrompt(settings)},
			{Role: domain.RoleUser, Content: UserPrompt(chatTitle, chatBio, message, category)},
		},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	g.metrics.RecordCompletion(time.Since(start).Seconds(), err)
	if err != nil {
		log.Error().Err(err).Msg("error generating response")
		return "", false
	}

	if !HasCyrillic(text) {
		phrases := FallbackPhrases(settings.Personality)
		fallback := phrases[g.pick(len(phrases))]
		log.Warn().
			Str("rejected", utils.Preview(text, 60)).
			Msg("response not in Russian, applying fallback")
		g.metrics.CompletionFallback.Inc()
		text = fallback
	}

	log.Info().Str("response", text).Msg("generated response")
	return text, true
}
