package persona

import (
	"fmt"
	"strings"
	"sync"

	"github.com/s4nngr10r/tgexp/config"
)

// Settings is the active personality and formality
type Settings struct {
	Personality string
	Formality   string
}

// Store holds the process wide Settings, changed only by explicit commands
type Store struct {
	mu       sync.RWMutex
	settings Settings
}

// NewStore creates a store seeded from config
func NewStore(cfg *config.PersonaConfig) *Store {
	return &Store{settings: Settings{
		Personality: cfg.Personality,
		Formality:   cfg.Formality,
	}}
}

// Get returns the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Set validates and replaces the settings
func (s *Store) Set(personality, formality string) error {
	personality = strings.ToLower(strings.TrimSpace(personality))
	formality = strings.ToLower(strings.TrimSpace(formality))

	if _, ok := personalityTraits[personality]; !ok {
		return fmt.Errorf("unknown personality %q", personality)
	}
	if _, ok := formalityStyles[formality]; !ok {
		return fmt.Errorf("unknown formality %q", formality)
	}

	s.mu.Lock()
	s.settings = Settings{Personality: personality, Formality: formality}
	s.mu.Unlock()
	return nil
}
