package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/s4nngr10r/tgexp/internal/domain"
	pkgerrors "github.com/s4nngr10r/tgexp/pkg/errors"
)

const (
	credentialsPrefix = "credentials_"
	credentialsSuffix = ".json"
)

// Credentials are the API credentials and phone of one account
type Credentials struct {
	APIID   string `json:"api_id"`
	APIHash string `json:"api_hash"`
	Phone   string `json:"phone"`
}

// AppID returns the numeric API id
func (c Credentials) AppID() (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(c.APIID))
	if err != nil || id <= 0 {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("invalid api id %q", c.APIID))
	}
	return id, nil
}

// Validate checks that all fields needed to connect are present
func (c Credentials) Validate() error {
	if _, err := c.AppID(); err != nil {
		return err
	}
	if strings.TrimSpace(c.APIHash) == "" {
		return pkgerrors.NewValidationError("api hash is required")
	}
	return nil
}

// CredentialsStore persists credentials as sessions/credentials_<id>.json
type CredentialsStore struct {
	dir string
}

// NewCredentialsStore creates a credentials store rooted at dir
func NewCredentialsStore(dir string) *CredentialsStore {
	return &CredentialsStore{dir: dir}
}

func (s *CredentialsStore) path(accountID string) string {
	return filepath.Join(s.dir, credentialsPrefix+accountID+credentialsSuffix)
}

// Save writes the credentials of an account with owner-only permissions
func (s *CredentialsStore) Save(accountID string, c Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path(accountID), data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Load reads the credentials of an account
func (s *CredentialsStore) Load(accountID string) (Credentials, error) {
	data, err := os.ReadFile(s.path(accountID))
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, fmt.Errorf("%w: %s", domain.ErrCredentialsNotFound, accountID)
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, pkgerrors.Wrap(pkgerrors.KindValidation, err, "malformed credentials file")
	}
	if c.APIID == "" {
		c.APIID = accountID
	}
	return c, nil
}

// List returns the ids of all accounts with stored credentials, sorted
func (s *CredentialsStore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, credentialsPrefix+"*"+credentialsSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), credentialsPrefix), credentialsSuffix)
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
