package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/pricing"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/internal/infrastructure/event"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SpaceService manages bookable spaces and their bookings
type SpaceService struct {
	spaceRepo   repository.SpaceRepository
	bookingRepo repository.BookingRepository
	clientRepo  repository.ClientRepository
	tenantRepo  repository.TenantRepository
	publisher   event.Publisher
}

// NewSpaceService creates a new space service
func NewSpaceService(
	spaceRepo repository.SpaceRepository,
	bookingRepo repository.BookingRepository,
	clientRepo repository.ClientRepository,
	tenantRepo repository.TenantRepository,
	publisher event.Publisher,
) *SpaceService {
	return &SpaceService{
		spaceRepo:   spaceRepo,
		bookingRepo: bookingRepo,
		clientRepo:  clientRepo,
		tenantRepo:  tenantRepo,
		publisher:   publisher,
	}
}

// CreateSpaceInput represents the create space input
type CreateSpaceInput struct {
	Name       string
	Kind       enum.SpaceKind
	Capacity   int
	HourlyRate decimal.Decimal
	Floor      *string
}

// CreateSpace creates a new space
func (s *SpaceService) CreateSpace(ctx context.Context, input *CreateSpaceInput) (*entity.Space, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	space := &entity.Space{
		TenantID:   tenantID,
		Name:       strings.TrimSpace(input.Name),
		Kind:       input.Kind,
		Capacity:   input.Capacity,
		HourlyRate: input.HourlyRate,
		Floor:      input.Floor,
		IsActive:   true,
	}
	if err := validateSpace(space); err != nil {
		return nil, err
	}

	if err := s.spaceRepo.Create(ctx, space); err != nil {
		return nil, err
	}
	return space, nil
}

// GetSpace retrieves a space by ID
func (s *SpaceService) GetSpace(ctx context.Context, id uuid.UUID) (*entity.Space, error) {
	space, err := s.spaceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if space == nil {
		return nil, apperror.NewNotFoundError("Space")
	}
	return space, nil
}

// ListSpaces lists spaces, optionally of one kind
func (s *SpaceService) ListSpaces(ctx context.Context, params *pagination.PaginationParams, kind *enum.SpaceKind) (*pagination.PaginatedResult[entity.Space], error) {
	if kind != nil && !kind.IsValid() {
		return nil, apperror.NewFieldError("kind", "Invalid space kind")
	}
	spaces, total, err := s.spaceRepo.List(ctx, params, kind)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(spaces, pag), nil
}

// UpdateSpaceInput represents the update space input
type UpdateSpaceInput struct {
	ID         uuid.UUID
	Name       *string
	Kind       *enum.SpaceKind
	Capacity   *int
	HourlyRate *decimal.Decimal
	Floor      *string
	IsActive   *bool
}

// UpdateSpace updates a space
func (s *SpaceService) UpdateSpace(ctx context.Context, input *UpdateSpaceInput) (*entity.Space, error) {
	space, err := s.GetSpace(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		space.Name = strings.TrimSpace(*input.Name)
	}
	if input.Kind != nil {
		space.Kind = *input.Kind
	}
	if input.Capacity != nil {
		space.Capacity = *input.Capacity
	}
	if input.HourlyRate != nil {
		space.HourlyRate = *input.HourlyRate
	}
	if input.Floor != nil {
		space.Floor = input.Floor
	}
	if input.IsActive != nil {
		space.IsActive = *input.IsActive
	}
	if err := validateSpace(space); err != nil {
		return nil, err
	}

	if err := s.spaceRepo.Update(ctx, space); err != nil {
		return nil, err
	}
	return space, nil
}

// DeleteSpace deletes a space
func (s *SpaceService) DeleteSpace(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetSpace(ctx, id); err != nil {
		return err
	}
	return s.spaceRepo.Delete(ctx, id)
}

// CreateBookingInput represents the create booking input
type CreateBookingInput struct {
	UserID   uuid.UUID
	SpaceID  uuid.UUID
	ClientID *uuid.UUID
	StartsAt time.Time
	EndsAt   time.Time
	Notes    *string
}

// CreateBooking reserves a space. The amount is the booked hours at the space's hourly rate.
func (s *SpaceService) CreateBooking(ctx context.Context, input *CreateBookingInput) (*entity.Booking, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	if !input.EndsAt.After(input.StartsAt) {
		return nil, apperror.NewFieldError("ends_at", "End time must be after start time")
	}

	space, err := s.spaceRepo.GetByID(ctx, input.SpaceID)
	if err != nil {
		return nil, err
	}
	if space == nil {
		return nil, apperror.NewFieldError("space_id", "Space not found")
	}
	if !space.IsActive {
		return nil, apperror.NewFieldError("space_id", "Space is not available for booking")
	}

	if input.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apperror.NewFieldError("client_id", "Client not found")
		}
	}

	overlap, err := s.bookingRepo.HasOverlap(ctx, space.ID, input.StartsAt, input.EndsAt)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperror.NewConflictError("The space is already booked for that time")
	}

	booking := &entity.Booking{
		TenantID:    tenantID,
		SpaceID:     space.ID,
		ClientID:    input.ClientID,
		CreatedByID: input.UserID,
		StartsAt:    input.StartsAt.UTC(),
		EndsAt:      input.EndsAt.UTC(),
		Status:      enum.BookingStatusConfirmed,
		Notes:       input.Notes,
	}
	booking.Amount = booking.Hours().Mul(space.HourlyRate).Round(pricing.MinorUnits(s.currency(ctx, tenantID)))

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	e := event.New(event.BookingCreated, tenantID, booking.ID, map[string]any{
		"space_id":  space.ID,
		"starts_at": booking.StartsAt,
		"ends_at":   booking.EndsAt,
	})
	e.ActorID = actor(input.UserID)
	publish(ctx, s.publisher, e)

	booking.Space = space
	return booking, nil
}

// GetBooking retrieves a booking by ID
func (s *SpaceService) GetBooking(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NewNotFoundError("Booking")
	}
	return booking, nil
}

// ListBookings lists bookings with filters
func (s *SpaceService) ListBookings(ctx context.Context, params *repository.BookingFilterParams) (*pagination.PaginatedResult[entity.Booking], error) {
	bookings, total, err := s.bookingRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bookings, pag), nil
}

// CancelBooking releases the booked slot
func (s *SpaceService) CancelBooking(ctx context.Context, id, userID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == enum.BookingStatusCancelled {
		return nil, apperror.NewConflictError("Booking is already cancelled")
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, enum.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = enum.BookingStatusCancelled

	e := event.New(event.BookingCancelled, booking.TenantID, booking.ID, map[string]any{
		"space_id": booking.SpaceID,
	})
	e.ActorID = actor(userID)
	publish(ctx, s.publisher, e)

	return booking, nil
}

func (s *SpaceService) currency(ctx context.Context, tenantID uuid.UUID) string {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil || tenant == nil || tenant.Settings.Currency == "" {
		return "CLP"
	}
	return tenant.Settings.Currency
}

func validateSpace(space *entity.Space) error {
	var errs []apperror.FieldError
	if space.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if !space.Kind.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "kind", Message: "Kind must be DESK, PRIVATE_OFFICE or MEETING_ROOM"})
	}
	if space.Capacity < 1 {
		errs = append(errs, apperror.FieldError{Field: "capacity", Message: "Capacity must be at least 1"})
	}
	if space.HourlyRate.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "hourly_rate", Message: "Hourly rate cannot be negative"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
