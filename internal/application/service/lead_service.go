package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/internal/infrastructure/event"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// defaultImportSource is stored on imported leads without a source column
const defaultImportSource = "import"

// LeadService handles lead operations
type LeadService struct {
	leadRepo        repository.LeadRepository
	opportunityRepo repository.OpportunityRepository
	publisher       event.Publisher
	invalidator     SummaryInvalidator
	now             Clock
}

// NewLeadService creates a new lead service
func NewLeadService(
	leadRepo repository.LeadRepository,
	opportunityRepo repository.OpportunityRepository,
	publisher event.Publisher,
	invalidator SummaryInvalidator,
) *LeadService {
	return &LeadService{
		leadRepo:        leadRepo,
		opportunityRepo: opportunityRepo,
		publisher:       publisher,
		invalidator:     invalidator,
		now:             systemClock,
	}
}

// CreateLeadInput represents the create lead input
type CreateLeadInput struct {
	UserID       uuid.UUID
	Name         string
	Email        *string
	Phone        *string
	Company      *string
	Source       *string
	Status       enum.LeadStatus
	AssignedToID *uuid.UUID
	Notes        *string
}

// CreateLead creates a new lead
func (s *LeadService) CreateLead(ctx context.Context, input *CreateLeadInput) (*entity.Lead, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}
	status := input.Status
	if status == "" {
		status = enum.LeadStatusNew
	}
	if err := validateLeadStatus(status); err != nil {
		return nil, err
	}

	lead := &entity.Lead{
		TenantID:     tenantID,
		CreatedByID:  input.UserID,
		AssignedToID: input.AssignedToID,
		Name:         name,
		Email:        normalizeEmail(input.Email),
		Phone:        input.Phone,
		Company:      input.Company,
		Source:       input.Source,
		Status:       status,
		Notes:        input.Notes,
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// GetLead retrieves a lead by ID
func (s *LeadService) GetLead(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, apperror.NewNotFoundError("Lead")
	}
	return lead, nil
}

// ListLeads lists leads with filters
func (s *LeadService) ListLeads(ctx context.Context, params *repository.LeadFilterParams) (*pagination.PaginatedResult[entity.Lead], error) {
	leads, total, err := s.leadRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(leads, pag), nil
}

// UpdateLeadInput represents the update lead input
type UpdateLeadInput struct {
	ID           uuid.UUID
	Name         *string
	Email        *string
	Phone        *string
	Company      *string
	Source       *string
	Status       *enum.LeadStatus
	AssignedToID *uuid.UUID
	Notes        *string
}

// UpdateLead updates a lead. Conversion only happens through ConvertLead.
func (s *LeadService) UpdateLead(ctx context.Context, input *UpdateLeadInput) (*entity.Lead, error) {
	lead, err := s.GetLead(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldError("name", "Name is required")
		}
		lead.Name = name
	}
	if input.Email != nil {
		lead.Email = normalizeEmail(input.Email)
	}
	if input.Phone != nil {
		lead.Phone = input.Phone
	}
	if input.Company != nil {
		lead.Company = input.Company
	}
	if input.Source != nil {
		lead.Source = input.Source
	}
	if input.AssignedToID != nil {
		lead.AssignedToID = input.AssignedToID
	}
	if input.Notes != nil {
		lead.Notes = input.Notes
	}
	if input.Status != nil && *input.Status != lead.Status {
		if lead.IsConverted() {
			return nil, apperror.NewConflictError("Lead has already been converted")
		}
		if err := validateLeadStatus(*input.Status); err != nil {
			return nil, err
		}
		lead.Status = *input.Status
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// DeleteLead deletes a lead
func (s *LeadService) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetLead(ctx, id); err != nil {
		return err
	}
	return s.leadRepo.Delete(ctx, id)
}

// ConvertLeadInput represents the opportunity created from a lead
type ConvertLeadInput struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Title             string
	Value             decimal.Decimal
	Probability       int
	ExpectedCloseDate *time.Time
}

// ConvertLead opens an opportunity for the lead and marks it converted
func (s *LeadService) ConvertLead(ctx context.Context, input *ConvertLeadInput) (*entity.Lead, *entity.Opportunity, error) {
	lead, err := s.GetLead(ctx, input.ID)
	if err != nil {
		return nil, nil, err
	}
	if lead.IsConverted() {
		return nil, nil, apperror.NewConflictError("Lead has already been converted")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = lead.Name
		if lead.Company != nil && *lead.Company != "" {
			title = *lead.Company
		}
	}
	if input.Probability < 0 || input.Probability > 100 {
		return nil, nil, apperror.NewFieldError("probability", "Probability must be between 0 and 100")
	}
	if input.Value.IsNegative() {
		return nil, nil, apperror.NewFieldError("value", "Value cannot be negative")
	}

	opportunity := &entity.Opportunity{
		TenantID:          lead.TenantID,
		Title:             title,
		Stage:             enum.StageInitialContact,
		Value:             input.Value,
		Probability:       input.Probability,
		ExpectedCloseDate: input.ExpectedCloseDate,
		LeadID:            &lead.ID,
		AssignedToID:      lead.AssignedToID,
	}
	if err := s.opportunityRepo.Create(ctx, opportunity); err != nil {
		return nil, nil, err
	}

	now := s.now()
	lead.Status = enum.LeadStatusConverted
	lead.OpportunityID = &opportunity.ID
	lead.ConvertedAt = &now
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, nil, err
	}

	e := event.New(event.LeadConverted, lead.TenantID, lead.ID, map[string]any{
		"opportunity_id": opportunity.ID,
	})
	e.ActorID = &input.UserID
	publish(ctx, s.publisher, e)
	invalidate(ctx, s.invalidator, lead.TenantID)

	return lead, opportunity, nil
}

// ImportLeadRow represents a single row from the import sheet
type ImportLeadRow struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Source  string
}

// ImportResult contains the result of an import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportLeads validates and bulk-creates leads from parsed import rows
func (s *LeadService) ImportLeads(ctx context.Context, userID uuid.UUID, rows []ImportLeadRow) (*ImportResult, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ImportRowError

	// email -> row number, to detect duplicates within the file
	seenEmails := make(map[string]int)

	var validLeads []entity.Lead

	for i, row := range rows {
		rowNum := i + 2 // row 1 is the header

		name := strings.TrimSpace(row.Name)
		if name == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "name", Message: "Name is required"})
			continue
		}

		email := strings.ToLower(strings.TrimSpace(row.Email))
		if email != "" {
			if !strings.Contains(email, "@") {
				rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "email", Message: "Invalid email"})
				continue
			}
			if prevRow, exists := seenEmails[email]; exists {
				rowErrors = append(rowErrors, ImportRowError{
					Row:     rowNum,
					Field:   "email",
					Message: fmt.Sprintf("Duplicate email '%s' (same as row %d)", email, prevRow),
				})
				continue
			}

			existing, err := s.leadRepo.GetByEmail(ctx, email)
			if err != nil {
				rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "email", Message: "Error checking email: " + err.Error()})
				continue
			}
			if existing != nil {
				rowErrors = append(rowErrors, ImportRowError{
					Row:     rowNum,
					Field:   "email",
					Message: fmt.Sprintf("A lead with email '%s' already exists", email),
				})
				continue
			}
			seenEmails[email] = rowNum
		}

		source := strings.TrimSpace(row.Source)
		if source == "" {
			source = defaultImportSource
		}

		validLeads = append(validLeads, entity.Lead{
			TenantID:    tenantID,
			CreatedByID: userID,
			Name:        name,
			Email:       stringPtr(email),
			Phone:       stringPtr(strings.TrimSpace(row.Phone)),
			Company:     stringPtr(strings.TrimSpace(row.Company)),
			Source:      &source,
			Status:      enum.LeadStatusNew,
		})
	}

	if len(validLeads) > 0 {
		if err := s.leadRepo.CreateBatch(ctx, validLeads); err != nil {
			return nil, apperror.NewAppError(500, "Failed to import leads: "+err.Error())
		}
	}

	result.Successful = len(validLeads)
	result.Failed = len(rowErrors)
	result.Errors = rowErrors

	return result, nil
}

func validateLeadStatus(status enum.LeadStatus) error {
	if !status.IsValid() {
		return apperror.NewFieldError("status", "Invalid lead status")
	}
	if status == enum.LeadStatusConverted {
		return apperror.NewFieldError("status", "Use the convert action to convert a lead")
	}
	return nil
}
