package telegram

import "time"

// AccountModel is the database row of a session account
type AccountModel struct {
	ID              string     `gorm:"primaryKey;size:64"`
	Phone           string     `gorm:"not null;size:32"`
	Status          string     `gorm:"not null;default:'inactive';size:32"`
	LastConnectedAt *time.Time `gorm:""`
	LastError       *string    `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for AccountModel
func (AccountModel) TableName() string {
	return "accounts"
}

// SessionModel is the stored MTProto session of an account
type SessionModel struct {
	AccountID   string    `gorm:"primaryKey;size:64"`
	SessionData []byte    `gorm:"type:bytea;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for SessionModel
func (SessionModel) TableName() string {
	return "sessions"
}

// Account status values
const (
	AccountStatusInactive = "inactive"
	AccountStatusActive   = "active"
)
