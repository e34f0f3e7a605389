package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/pkg/pagination"
)

// QuotationRepository defines the interface for quotation data operations
type QuotationRepository interface {
	// Create stores the quotation and its items in one transaction
	Create(ctx context.Context, quotation *entity.Quotation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Quotation, error)
	GetByNumber(ctx context.Context, number string) (*entity.Quotation, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Quotation, error)
	// Update saves the header and replaces all items
	Update(ctx context.Context, quotation *entity.Quotation) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.QuotationStatus) error
	// Convert marks the quotation CONVERTED and, when wonOpportunityID is set,
	// moves that opportunity to CLOSED_WON in the same transaction
	Convert(ctx context.Context, id uuid.UUID, wonOpportunityID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *QuotationFilterParams) ([]entity.Quotation, int64, error)
	// NextSequence returns the next per-tenant quotation sequence number
	NextSequence(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[enum.QuotationStatus]int64, error)
	// ListExpirable returns SENT or VIEWED quotations of every tenant whose validity ended before now
	ListExpirable(ctx context.Context, now time.Time) ([]entity.Quotation, error)
}

// QuotationFilterParams contains filtering parameters for quotation queries
type QuotationFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	Status        *enum.QuotationStatus
	ClientID      *uuid.UUID
	OpportunityID *uuid.UUID
	SortBy        string
	SortOrder     string
}
