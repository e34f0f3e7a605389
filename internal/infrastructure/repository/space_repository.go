package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	domainRepo "github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/pkg/pagination"
	"gorm.io/gorm"
)

type spaceRepository struct {
	db *gorm.DB
}

// NewSpaceRepository creates a new space repository
func NewSpaceRepository(db *gorm.DB) domainRepo.SpaceRepository {
	return &spaceRepository{db: db}
}

func (r *spaceRepository) Create(ctx context.Context, space *entity.Space) error {
	return r.db.WithContext(ctx).Create(space).Error
}

func (r *spaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Space, error) {
	var space entity.Space
	err := r.db.WithContext(ctx).Scopes(TenantScope(ctx)).First(&space, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &space, err
}

func (r *spaceRepository) Update(ctx context.Context, space *entity.Space) error {
	return r.db.WithContext(ctx).Save(space).Error
}

func (r *spaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Delete(&entity.Space{}, "id = ?", id).Error
}

func (r *spaceRepository) List(ctx context.Context, params *pagination.PaginationParams, kind *enum.SpaceKind) ([]entity.Space, int64, error) {
	var spaces []entity.Space
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Space{}).Scopes(TenantScope(ctx))
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&spaces).Error
	return spaces, total, err
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	return r.db.WithContext(ctx).Omit("Space", "Client").Create(booking).Error
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Space").
		Preload("Client").
		First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &booking, err
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&entity.Booking{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Update("status", status).Error
}

// HasOverlap treats ranges as half open, so back to back bookings do not collide
func (r *bookingRepository) HasOverlap(ctx context.Context, spaceID uuid.UUID, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Booking{}).
		Scopes(TenantScope(ctx)).
		Where("space_id = ? AND status <> ?", spaceID, enum.BookingStatusCancelled).
		Where("starts_at < ? AND ends_at > ?", to, from).
		Count(&count).Error
	return count > 0, err
}

func (r *bookingRepository) List(ctx context.Context, params *domainRepo.BookingFilterParams) ([]entity.Booking, int64, error) {
	var bookings []entity.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Booking{}).Scopes(TenantScope(ctx))
	if params.SpaceID != nil {
		query = query.Where("space_id = ?", *params.SpaceID)
	}
	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}
	if params.From != nil {
		query = query.Where("ends_at > ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("starts_at < ?", *params.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Space").
		Order("starts_at ASC").
		Find(&bookings).Error
	return bookings, total, err
}
