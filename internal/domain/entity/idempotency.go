package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	// IdempotencyTTL is how long a completed response can be replayed.
	IdempotencyTTL = 24 * time.Hour
	// IdempotencyLockTTL bounds how long an in-flight reservation blocks
	// its key if the process dies before completing it.
	IdempotencyLockTTL = 2 * time.Minute
)

// IdempotencyKey stores a completed response so a retried request with the
// same key replays it instead of creating a second invoice.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_user_key;size:255;not null" json:"key"`
	UserID       uuid.UUID `gorm:"uniqueIndex:idx_idempotency_user_key;type:uuid;not null" json:"userId"`
	Endpoint     string    `gorm:"size:255;not null" json:"endpoint"`
	RequestHash  string    `gorm:"size:64" json:"requestHash"`
	ResponseCode int       `gorm:"not null" json:"responseCode"`
	ResponseBody string    `gorm:"type:text" json:"responseBody"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expiresAt"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// InProgress reports a reservation whose request has not finished yet.
func (i *IdempotencyKey) InProgress() bool {
	return i.ResponseCode == 0
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
