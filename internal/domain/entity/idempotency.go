package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyKey stores a processed create request so a retry replays the
// first response. Keys are unique per user and cowork; TenantID is uuid.Nil
// for requests made outside a cowork.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idempotency_scope_key,priority:1"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idempotency_scope_key,priority:2"`
	Key          string    `gorm:"size:255;not null;uniqueIndex:idx_idempotency_scope_key,priority:3"`
	Endpoint     string    `gorm:"size:255;not null"` // e.g. "POST /api/v1/quotations"
	RequestHash  string    `gorm:"size:64"`           // SHA256 of the request body
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// BeforeCreate generates a UUID before creating a new idempotency key
func (i *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// Replayable reports whether the stored response may still be returned at now
func (i *IdempotencyKey) Replayable(now time.Time) bool {
	return now.Before(i.ExpiresAt)
}
