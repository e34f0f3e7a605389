package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeadRequest represents a lead creation request
type CreateLeadRequest struct {
	Name         string     `json:"name" binding:"required,max=255"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Company      *string    `json:"company"`
	Source       *string    `json:"source"`
	Status       string     `json:"status"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
	Notes        *string    `json:"notes"`
}

// UpdateLeadRequest represents a lead update request
type UpdateLeadRequest struct {
	Name         *string    `json:"name" binding:"omitempty,max=255"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Company      *string    `json:"company"`
	Source       *string    `json:"source"`
	Status       *string    `json:"status"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
	Notes        *string    `json:"notes"`
}

// ConvertLeadRequest carries the opportunity created from a lead
type ConvertLeadRequest struct {
	Title             string          `json:"title" binding:"omitempty,max=255"`
	Value             decimal.Decimal `json:"value"`
	Probability       int             `json:"probability"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date"`
}

// LeadFilterRequest represents lead filter parameters
type LeadFilterRequest struct {
	Search       string `form:"search"`
	Status       string `form:"status"`
	Source       string `form:"source"`
	AssignedToID string `form:"assigned_to_id"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}
