package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotd/td/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresSessionStorage keeps MTProto sessions in the sessions table
type PostgresSessionStorage struct {
	db        *gorm.DB
	accountID string
}

// NewPostgresSessionStorage creates a database backed session storage and
// makes sure the account row exists
func NewPostgresSessionStorage(ctx context.Context, db *gorm.DB, accountID, phone string) (*PostgresSessionStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}

	account := AccountModel{ID: accountID, Phone: phone, Status: AccountStatusInactive}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}

	return &PostgresSessionStorage{db: db, accountID: accountID}, nil
}

// LoadSession loads session data from PostgreSQL
func (s *PostgresSessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	var sess SessionModel
	err := s.db.WithContext(ctx).Where("account_id = ?", s.accountID).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(sess.SessionData) == 0 {
		return nil, session.ErrNotFound
	}
	return sess.SessionData, nil
}

// StoreSession upserts session data
func (s *PostgresSessionStorage) StoreSession(ctx context.Context, data []byte) error {
	sess := SessionModel{AccountID: s.accountID, SessionData: data}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_data", "updated_at"}),
		}).
		Create(&sess).Error
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// DeleteSession removes the stored session
func (s *PostgresSessionStorage) DeleteSession(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("account_id = ?", s.accountID).Delete(&SessionModel{}).Error
}

// UpdateAccountStatus records the connection status of the account
func (s *PostgresSessionStorage) UpdateAccountStatus(ctx context.Context, status string, lastError *string) error {
	updates := map[string]interface{}{
		"status":     status,
		"last_error": lastError,
	}
	if status == AccountStatusActive {
		now := time.Now()
		updates["last_connected_at"] = &now
	}

	return s.db.WithContext(ctx).Model(&AccountModel{}).Where("id = ?", s.accountID).Updates(updates).Error
}

var _ session.Storage = (*PostgresSessionStorage)(nil)
