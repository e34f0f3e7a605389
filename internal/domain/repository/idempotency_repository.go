package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
)

// IdempotencyScope identifies the owner of an Idempotency-Key. TenantID is
// uuid.Nil on routes outside a cowork.
type IdempotencyScope struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

// IdempotencyRepository stores processed create requests for replay
type IdempotencyRepository interface {
	// Find returns the record stored for key within scope, or nil
	Find(ctx context.Context, scope IdempotencyScope, key string) (*entity.IdempotencyKey, error)
	// Save stores a processed request, replacing an expired record with the same scope and key
	Save(ctx context.Context, record *entity.IdempotencyKey) error
	// DeleteExpired removes records that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
