package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/pipeline"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Opportunity is a sales deal tracked through the pipeline stages.
// It belongs to either a client or a lead, never both.
type Opportunity struct {
	ID                uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	TenantID          uuid.UUID             `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Title             string                `gorm:"size:255;not null" json:"title"`
	Stage             enum.OpportunityStage `gorm:"size:30;not null;default:'INITIAL_CONTACT';index" json:"stage"`
	Value             decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0" json:"value"`
	Probability       int                   `gorm:"not null;default:0" json:"probability"`
	ExpectedRevenue   decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0" json:"expected_revenue"`
	ExpectedCloseDate *time.Time            `gorm:"type:date" json:"expected_close_date,omitempty"`
	ClientID          *uuid.UUID            `gorm:"type:uuid;index" json:"client_id,omitempty"`
	LeadID            *uuid.UUID            `gorm:"type:uuid;index" json:"lead_id,omitempty"`
	AssignedToID      *uuid.UUID            `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	Notes             *string               `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	DeletedAt         gorm.DeletedAt        `gorm:"index" json:"-"`

	// Relationships
	Client     *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Lead       *Lead   `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	AssignedTo *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Stage == "" {
		o.Stage = enum.StageInitialContact
	}
	return nil
}

// BeforeSave keeps the weighted revenue in sync with value and probability
func (o *Opportunity) BeforeSave(tx *gorm.DB) error {
	o.ExpectedRevenue = pipeline.ExpectedRevenue(o.Value, o.Probability)
	return nil
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// Deal returns the fields the stage rules operate on
func (o *Opportunity) Deal() pipeline.Deal {
	return pipeline.Deal{
		Stage:             o.Stage,
		UpdatedAt:         o.UpdatedAt,
		ExpectedCloseDate: o.ExpectedCloseDate,
	}
}
