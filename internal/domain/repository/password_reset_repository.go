package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
)

// PasswordResetTokenRepository stores password reset grants. Tokens are not tenant scoped.
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *entity.PasswordResetToken) error
	GetByHash(ctx context.Context, hash string) (*entity.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	// DeleteByUser drops every token of a user. A user holds at most one live token.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
