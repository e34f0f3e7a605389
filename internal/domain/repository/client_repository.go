package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/pkg/pagination"
)

// ClientRepository defines the interface for client data operations.
// Every query is restricted to the tenant carried by ctx.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	GetByEmail(ctx context.Context, email string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns clients with page-based pagination
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error)
	// ListWithCursor returns up to limit+1 clients after the cursor
	ListWithCursor(ctx context.Context, params *pagination.CursorParams, search string) ([]entity.Client, error)
}
