package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Space is a bookable desk, office or meeting room
type Space struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Kind       enum.SpaceKind  `gorm:"size:30;not null" json:"kind"`
	Capacity   int             `gorm:"not null;default:1" json:"capacity"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"hourly_rate"`
	Floor      *string         `gorm:"size:50" json:"floor,omitempty"`
	IsActive   bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (s *Space) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Space) TableName() string {
	return "spaces"
}

// Booking reserves a space for a time range [StartsAt, EndsAt)
type Booking struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SpaceID     uuid.UUID          `gorm:"type:uuid;not null;index:idx_bookings_space_range,priority:1" json:"space_id"`
	ClientID    *uuid.UUID         `gorm:"type:uuid;index" json:"client_id,omitempty"`
	CreatedByID uuid.UUID          `gorm:"type:uuid;not null" json:"created_by_id"`
	StartsAt    time.Time          `gorm:"not null;index:idx_bookings_space_range,priority:2" json:"starts_at"`
	EndsAt      time.Time          `gorm:"not null" json:"ends_at"`
	Status      enum.BookingStatus `gorm:"size:20;not null;default:'CONFIRMED'" json:"status"`
	Amount      decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	Notes       *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	Space  *Space  `gorm:"foreignKey:SpaceID" json:"space,omitempty"`
	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = enum.BookingStatusConfirmed
	}
	return nil
}

func (Booking) TableName() string {
	return "bookings"
}

// Hours returns the booked duration in hours
func (b *Booking) Hours() decimal.Decimal {
	return decimal.NewFromFloat(b.EndsAt.Sub(b.StartsAt).Hours())
}
