package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// OpportunityRepository defines the interface for opportunity data operations
type OpportunityRepository interface {
	Create(ctx context.Context, opportunity *entity.Opportunity) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Opportunity, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Opportunity, error)
	Update(ctx context.Context, opportunity *entity.Opportunity) error
	// UpdateStage persists a stage change and bumps updated_at
	UpdateStage(ctx context.Context, id uuid.UUID, stage enum.OpportunityStage) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *OpportunityFilterParams) ([]entity.Opportunity, int64, error)
	// ListOpen returns every opportunity that is not in a terminal stage
	ListOpen(ctx context.Context) ([]entity.Opportunity, error)
	// ListAll returns every opportunity of the tenant for board rendering
	ListAll(ctx context.Context) ([]entity.Opportunity, error)
	StageTotals(ctx context.Context) ([]StageTotal, error)
}

// OpportunityFilterParams contains filtering parameters for opportunity queries
type OpportunityFilterParams struct {
	Pagination   *pagination.PaginationParams
	Search       string
	Stage        *enum.OpportunityStage
	ClientID     *uuid.UUID
	AssignedToID *uuid.UUID
	SortBy       string
	SortOrder    string
}

// StageTotal aggregates the opportunities of one stage
type StageTotal struct {
	Stage           enum.OpportunityStage
	Count           int64
	Value           decimal.Decimal
	ExpectedRevenue decimal.Decimal
}
