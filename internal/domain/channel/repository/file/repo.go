package file

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/deps"
)

// Repository reads channel lists from disk.
// A JSON array of strings is valid YAML, so both formats are accepted.
type Repository struct{}

// NewRepository creates a file based reference repository
func NewRepository() deps.ReferenceRepository {
	return &Repository{}
}

// Load returns the non-blank references listed in path
func (r *Repository) Load(path string) ([]domain.ChannelReference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel list %s: %w", path, err)
	}

	var raw []string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("channel list %s must be an array of strings: %w", path, err)
	}

	refs := make([]domain.ChannelReference, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			refs = append(refs, domain.ChannelReference(s))
		}
	}
	return refs, nil
}
