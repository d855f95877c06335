package persona

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
)

type mockCompletionClient struct {
	reply string
	err   error
	last  domain.CompletionRequest
	calls int
}

func (m *mockCompletionClient) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	m.calls++
	m.last = req
	return m.reply, m.err
}

type mockProvider struct {
	client *mockCompletionClient
	err    error
}

func (p *mockProvider) Client(string) (domain.CompletionClient, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

func newTestGenerator(t *testing.T, provider ClientProvider, personality string) *Generator {
	t.Helper()
	store := NewStore(&config.PersonaConfig{Personality: personality, Formality: FormalityNeutral})
	cfg := &config.LLMConfig{Model: "deepseek-chat", Temperature: 0.7, MaxTokens: 100}
	return NewGenerator(provider, store, cfg, zerolog.Nop(), metrics.GetDefaultMetrics())
}

func TestGenerateReturnsCyrillicReply(t *testing.T) {
	client := &mockCompletionClient{reply: "Согласен, питон рулит 🐍"}
	g := newTestGenerator(t, &mockProvider{client: client}, PersonalityDefault)

	text, ok := g.Generate(context.Background(), "100", "Python Dev Chat", "", "что думаете?")

	require.True(t, ok)
	assert.Equal(t, "Согласен, питон рулит 🐍", text)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "deepseek-chat", client.last.Model)
	assert.InDelta(t, 0.7, client.last.Temperature, 1e-9)
	assert.Equal(t, 100, client.last.MaxTokens)
	require.Len(t, client.last.Messages, 2)
	assert.Equal(t, domain.RoleSystem, client.last.Messages[0].Role)
	assert.Equal(t, domain.RoleUser, client.last.Messages[1].Role)
	assert.Contains(t, client.last.Messages[1].Content, string(CategoryTechnology))
}

func TestGenerateFallsBackOnNonCyrillic(t *testing.T) {
	client := &mockCompletionClient{reply: "Totally agree! 👍"}
	g := newTestGenerator(t, &mockProvider{client: client}, PersonalityWitty)

	for i := 0; i < 20; i++ {
		text, ok := g.Generate(context.Background(), "100", "Chat", "", "hi")
		require.True(t, ok)
		assert.Contains(t, FallbackPhrases(PersonalityWitty), text)
		assert.NotEqual(t, "Totally agree! 👍", text)
	}
}

func TestGenerateFallbackUsesPicker(t *testing.T) {
	client := &mockCompletionClient{reply: "nope"}
	g := newTestGenerator(t, &mockProvider{client: client}, PersonalityExpert)
	g.pick = func(n int) int { return n - 1 }

	text, ok := g.Generate(context.Background(), "100", "Chat", "", "hi")
	require.True(t, ok)
	assert.Equal(t, FallbackPhrases(PersonalityExpert)[3], text)
}

func TestGenerateFollowsStoreChanges(t *testing.T) {
	client := &mockCompletionClient{reply: "english only"}
	g := newTestGenerator(t, &mockProvider{client: client}, PersonalityDefault)
	require.NoError(t, g.store.Set("Provocative", "FORMAL"))

	text, ok := g.Generate(context.Background(), "100", "Chat", "", "hi")
	require.True(t, ok)
	assert.Contains(t, FallbackPhrases(PersonalityProvocative), text)
	assert.Contains(t, client.last.Messages[0].Content, formalityStyles[FormalityFormal])
}

func TestGenerateServiceError(t *testing.T) {
	client := &mockCompletionClient{err: errors.New("502 bad gateway")}
	g := newTestGenerator(t, &mockProvider{client: client}, PersonalityDefault)

	text, ok := g.Generate(context.Background(), "100", "Chat", "", "hi")
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestGenerateMissingKey(t *testing.T) {
	g := newTestGenerator(t, &mockProvider{err: domain.ErrMissingAPIKey}, PersonalityDefault)

	_, ok := g.Generate(context.Background(), "100", "Chat", "", "hi")
	assert.False(t, ok)
}

func TestStoreSetRejectsUnknown(t *testing.T) {
	s := NewStore(&config.PersonaConfig{Personality: PersonalityDefault, Formality: FormalityNeutral})

	assert.Error(t, s.Set("grumpy", FormalityCasual))
	assert.Error(t, s.Set(PersonalityWitty, "posh"))
	assert.Equal(t, Settings{Personality: PersonalityDefault, Formality: FormalityNeutral}, s.Get())
}
