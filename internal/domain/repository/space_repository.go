package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/pkg/pagination"
)

// SpaceRepository defines the interface for space data operations
type SpaceRepository interface {
	Create(ctx context.Context, space *entity.Space) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Space, error)
	Update(ctx context.Context, space *entity.Space) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, kind *enum.SpaceKind) ([]entity.Space, int64, error)
}

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.BookingStatus) error
	// HasOverlap reports whether a confirmed booking of the space intersects [from, to)
	HasOverlap(ctx context.Context, spaceID uuid.UUID, from, to time.Time) (bool, error)
	List(ctx context.Context, params *BookingFilterParams) ([]entity.Booking, int64, error)
}

// BookingFilterParams contains filtering parameters for booking queries
type BookingFilterParams struct {
	Pagination *pagination.PaginationParams
	SpaceID    *uuid.UUID
	ClientID   *uuid.UUID
	From       *time.Time
	To         *time.Time
}
