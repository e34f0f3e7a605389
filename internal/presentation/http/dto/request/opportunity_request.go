package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOpportunityRequest represents an opportunity creation request
type CreateOpportunityRequest struct {
	Title             string          `json:"title" binding:"required,max=255"`
	Stage             string          `json:"stage"`
	Value             decimal.Decimal `json:"value"`
	Probability       int             `json:"probability"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date"`
	ClientID          *uuid.UUID      `json:"client_id"`
	LeadID            *uuid.UUID      `json:"lead_id"`
	AssignedToID      *uuid.UUID      `json:"assigned_to_id"`
	Notes             *string         `json:"notes"`
}

// UpdateOpportunityRequest represents an opportunity update request.
// The stage is changed through ChangeStageRequest only.
type UpdateOpportunityRequest struct {
	Title             *string          `json:"title" binding:"omitempty,max=255"`
	Value             *decimal.Decimal `json:"value"`
	Probability       *int             `json:"probability"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
	ClientID          *uuid.UUID       `json:"client_id"`
	LeadID            *uuid.UUID       `json:"lead_id"`
	AssignedToID      *uuid.UUID       `json:"assigned_to_id"`
	Notes             *string          `json:"notes"`
}

// ChangeStageRequest moves an opportunity to a stage
type ChangeStageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// BulkStageRequest moves several opportunities to one stage
type BulkStageRequest struct {
	IDs   []uuid.UUID `json:"ids" binding:"required,min=1,max=200"`
	Stage string      `json:"stage" binding:"required"`
}

// OpportunityFilterRequest represents opportunity filter parameters
type OpportunityFilterRequest struct {
	Search       string `form:"search"`
	Stage        string `form:"stage"`
	ClientID     string `form:"client_id"`
	AssignedToID string `form:"assigned_to_id"`
	SortBy       string `form:"sort_by"`
	SortOrder    string `form:"sort_order"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}
