package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/pkg/pagination"
)

// LeadRepository defines the interface for lead data operations
type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	CreateBatch(ctx context.Context, leads []entity.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	GetByEmail(ctx context.Context, email string) (*entity.Lead, error)
	Update(ctx context.Context, lead *entity.Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *LeadFilterParams) ([]entity.Lead, int64, error)
}

// LeadFilterParams contains filtering parameters for lead queries
type LeadFilterParams struct {
	Pagination   *pagination.PaginationParams
	Search       string
	Status       *enum.LeadStatus
	Source       string
	AssignedToID *uuid.UUID
}
