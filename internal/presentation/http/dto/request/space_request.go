package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSpaceRequest represents a space creation request
type CreateSpaceRequest struct {
	Name       string          `json:"name" binding:"required,max=255"`
	Kind       string          `json:"kind" binding:"required"`
	Capacity   int             `json:"capacity"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Floor      *string         `json:"floor"`
}

// UpdateSpaceRequest represents a space update request
type UpdateSpaceRequest struct {
	Name       *string          `json:"name" binding:"omitempty,max=255"`
	Kind       *string          `json:"kind"`
	Capacity   *int             `json:"capacity"`
	HourlyRate *decimal.Decimal `json:"hourly_rate"`
	Floor      *string          `json:"floor"`
	IsActive   *bool            `json:"is_active"`
}

// CreateBookingRequest reserves a space for a time range
type CreateBookingRequest struct {
	SpaceID  uuid.UUID  `json:"space_id" binding:"required"`
	ClientID *uuid.UUID `json:"client_id"`
	StartsAt time.Time  `json:"starts_at" binding:"required"`
	EndsAt   time.Time  `json:"ends_at" binding:"required"`
	Notes    *string    `json:"notes"`
}

// BookingFilterRequest represents booking filter parameters
type BookingFilterRequest struct {
	SpaceID  string     `form:"space_id"`
	ClientID string     `form:"client_id"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     int        `form:"page"`
	PerPage  int        `form:"per_page"`
}
