package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quotation is a priced proposal sent to a client
type Quotation struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID            `gorm:"type:uuid;not null;index;uniqueIndex:idx_quotations_tenant_number,priority:1" json:"tenant_id"`
	CreatedByID    uuid.UUID            `gorm:"type:uuid;not null" json:"created_by_id"`
	Number         string               `gorm:"size:50;not null;uniqueIndex:idx_quotations_tenant_number,priority:2" json:"number"`
	Sequence       int                  `gorm:"not null;default:0" json:"-"`
	Title          string               `gorm:"size:255;not null" json:"title"`
	Currency       string               `gorm:"size:3;not null;default:'CLP'" json:"currency"`
	ClientID       uuid.UUID            `gorm:"type:uuid;not null;index" json:"client_id"`
	OpportunityID  *uuid.UUID           `gorm:"type:uuid;index" json:"opportunity_id,omitempty"`
	Status         enum.QuotationStatus `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	DiscountType   enum.DiscountType    `gorm:"size:20;not null;default:'FIXED'" json:"discount_type"`
	DiscountValue  decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"discount_value"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"subtotal"`
	DiscountAmount decimal.Decimal      `gorm:"type:decimal(24,8);not null;default:0" json:"discount_amount"`
	TaxableAmount  decimal.Decimal      `gorm:"type:decimal(24,8);not null;default:0" json:"taxable_amount"`
	Taxes          decimal.Decimal      `gorm:"type:decimal(24,8);not null;default:0" json:"taxes"`
	Total          decimal.Decimal      `gorm:"type:decimal(24,8);not null;default:0" json:"total"`
	ValidUntil     time.Time            `gorm:"not null;index" json:"valid_until"`
	Notes          *string              `gorm:"type:text" json:"notes,omitempty"`
	SentAt         *time.Time           `json:"sent_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	DeletedAt      gorm.DeletedAt       `gorm:"index" json:"-"`

	// Relationships
	Client      *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Opportunity *Opportunity    `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
	Items       []QuotationItem `gorm:"foreignKey:QuotationID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new quotation
func (q *Quotation) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Quotation model
func (Quotation) TableName() string {
	return "quotations"
}

// PricingItems converts the stored lines for the calculator
func (q *Quotation) PricingItems() []pricing.Item {
	items := make([]pricing.Item, len(q.Items))
	for i, it := range q.Items {
		items[i] = pricing.Item{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return items
}

// ApplySummary copies computed amounts onto the quotation
func (q *Quotation) ApplySummary(s pricing.Summary) {
	q.Subtotal = s.Subtotal
	q.DiscountAmount = s.DiscountAmount
	q.TaxableAmount = s.TaxableAmount
	q.Taxes = s.Taxes
	q.Total = s.Total
}

// QuotationItem is a line of a quotation
type QuotationItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	QuotationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"quotation_id"`
	Position    int             `gorm:"not null;default:0" json:"position"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new quotation item
func (qi *QuotationItem) BeforeCreate(tx *gorm.DB) error {
	if qi.ID == uuid.Nil {
		qi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the QuotationItem model
func (QuotationItem) TableName() string {
	return "quotation_items"
}
