package storage

import (
	"time"

	"gorm.io/datatypes"
)

// NoteRecord is one captured note line, attributed to the user who spoke it.
type NoteRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"index;not null" json:"username"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (NoteRecord) TableName() string {
	return "notes"
}

// AuthEventRecord is an audit entry for an authentication related event:
// token accept/reject, biometric result, unlock, enrollment.
type AuthEventRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AttemptID string         `gorm:"index" json:"attempt_id"`
	Event     string         `gorm:"index;not null" json:"event"`
	Username  string         `gorm:"index" json:"username"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

func (AuthEventRecord) TableName() string {
	return "auth_events"
}

// TokenCodeRecord backs the sqlite driver of the authorization-code store.
type TokenCodeRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Username  string    `gorm:"not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TokenCodeRecord) TableName() string {
	return "token_codes"
}
