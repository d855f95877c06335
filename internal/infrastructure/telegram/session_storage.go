package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gotd/td/session"
)

// FileSessionStorage keeps the MTProto session of one account in
// sessions/session_<id>.json
type FileSessionStorage struct {
	filePath string
}

// NewFileSessionStorage creates a file based session storage
func NewFileSessionStorage(sessionDir, accountID string) (*FileSessionStorage, error) {
	if err := os.MkdirAll(sessionDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &FileSessionStorage{
		filePath: filepath.Join(sessionDir, fmt.Sprintf("session_%s.json", accountID)),
	}, nil
}

// LoadSession loads session data from file
func (s *FileSessionStorage) LoadSession(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if len(data) == 0 {
		return nil, session.ErrNotFound
	}
	return data, nil
}

// StoreSession writes session data with owner-only permissions
func (s *FileSessionStorage) StoreSession(_ context.Context, data []byte) error {
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// DeleteSession removes the session file
func (s *FileSessionStorage) DeleteSession(_ context.Context) error {
	if err := os.Remove(s.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// Path returns the session file path
func (s *FileSessionStorage) Path() string {
	return s.filePath
}

var _ session.Storage = (*FileSessionStorage)(nil)
