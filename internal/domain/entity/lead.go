package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Lead is a prospect that has not yet become a client
type Lead struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CreatedByID   uuid.UUID       `gorm:"type:uuid;not null" json:"created_by_id"`
	AssignedToID  *uuid.UUID      `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Email         *string         `gorm:"size:255;index" json:"email,omitempty"`
	Phone         *string         `gorm:"size:50" json:"phone,omitempty"`
	Company       *string         `gorm:"size:255" json:"company,omitempty"`
	Source        *string         `gorm:"size:100" json:"source,omitempty"`
	Status        enum.LeadStatus `gorm:"size:20;not null;default:'NEW';index" json:"status"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
	ConvertedAt   *time.Time      `json:"converted_at,omitempty"`
	OpportunityID *uuid.UUID      `gorm:"type:uuid" json:"opportunity_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	AssignedTo *User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = enum.LeadStatusNew
	}
	return nil
}

func (Lead) TableName() string {
	return "leads"
}

// IsConverted reports whether the lead already produced an opportunity
func (l *Lead) IsConverted() bool {
	return l.Status == enum.LeadStatusConverted
}
