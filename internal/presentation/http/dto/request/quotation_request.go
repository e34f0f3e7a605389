package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationItemRequest is one line of a quotation
type QuotationItemRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateQuotationRequest represents a quotation creation request
type CreateQuotationRequest struct {
	Title         string                 `json:"title" binding:"max=255"`
	ClientID      *uuid.UUID             `json:"client_id"`
	OpportunityID *uuid.UUID             `json:"opportunity_id"`
	Currency      string                 `json:"currency"`
	DiscountType  string                 `json:"discount_type"`
	DiscountValue decimal.Decimal        `json:"discount_value"`
	ValidUntil    *time.Time             `json:"valid_until"`
	Notes         *string                `json:"notes"`
	Items         []QuotationItemRequest `json:"items"`
}

// UpdateQuotationRequest represents a quotation update. A non-empty Items
// list replaces every line.
type UpdateQuotationRequest struct {
	Title         *string                `json:"title" binding:"omitempty,max=255"`
	ClientID      *uuid.UUID             `json:"client_id"`
	OpportunityID *uuid.UUID             `json:"opportunity_id"`
	Currency      *string                `json:"currency"`
	DiscountType  *string                `json:"discount_type"`
	DiscountValue *decimal.Decimal       `json:"discount_value"`
	ValidUntil    *time.Time             `json:"valid_until"`
	Notes         *string                `json:"notes"`
	Items         []QuotationItemRequest `json:"items"`
}

// PreviewQuotationRequest asks for totals without storing anything
type PreviewQuotationRequest struct {
	Currency      string                 `json:"currency"`
	DiscountType  string                 `json:"discount_type"`
	DiscountValue decimal.Decimal        `json:"discount_value"`
	Items         []QuotationItemRequest `json:"items"`
}

// UpdateQuotationStatusRequest moves a quotation through its lifecycle
type UpdateQuotationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// QuotationFilterRequest represents quotation filter parameters
type QuotationFilterRequest struct {
	Search        string `form:"search"`
	Status        string `form:"status"`
	ClientID      string `form:"client_id"`
	OpportunityID string `form:"opportunity_id"`
	SortBy        string `form:"sort_by"`
	SortOrder     string `form:"sort_order"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
