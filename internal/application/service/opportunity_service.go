package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/pipeline"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/internal/infrastructure/event"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// OpportunityService manages opportunities and their pipeline stage
type OpportunityService struct {
	opportunityRepo repository.OpportunityRepository
	clientRepo      repository.ClientRepository
	leadRepo        repository.LeadRepository
	publisher       event.Publisher
	invalidator     SummaryInvalidator
	now             Clock
}

// NewOpportunityService creates a new opportunity service
func NewOpportunityService(
	opportunityRepo repository.OpportunityRepository,
	clientRepo repository.ClientRepository,
	leadRepo repository.LeadRepository,
	publisher event.Publisher,
	invalidator SummaryInvalidator,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		clientRepo:      clientRepo,
		leadRepo:        leadRepo,
		publisher:       publisher,
		invalidator:     invalidator,
		now:             systemClock,
	}
}

// CreateOpportunityInput represents the create opportunity input
type CreateOpportunityInput struct {
	Title             string
	Stage             enum.OpportunityStage
	Value             decimal.Decimal
	Probability       int
	ExpectedCloseDate *time.Time
	ClientID          *uuid.UUID
	LeadID            *uuid.UUID
	AssignedToID      *uuid.UUID
	Notes             *string
}

// CreateOpportunity creates an opportunity for a client or a lead
func (s *OpportunityService) CreateOpportunity(ctx context.Context, input *CreateOpportunityInput) (*entity.Opportunity, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	stage := input.Stage
	if stage == "" {
		stage = enum.StageInitialContact
	}

	opportunity := &entity.Opportunity{
		TenantID:          tenantID,
		Title:             strings.TrimSpace(input.Title),
		Stage:             stage,
		Value:             input.Value,
		Probability:       input.Probability,
		ExpectedCloseDate: input.ExpectedCloseDate,
		ClientID:          input.ClientID,
		LeadID:            input.LeadID,
		AssignedToID:      input.AssignedToID,
		Notes:             input.Notes,
	}
	if err := s.validate(ctx, opportunity); err != nil {
		return nil, err
	}

	if err := s.opportunityRepo.Create(ctx, opportunity); err != nil {
		return nil, err
	}
	invalidate(ctx, s.invalidator, tenantID)

	return opportunity, nil
}

// GetOpportunity retrieves an opportunity by ID
func (s *OpportunityService) GetOpportunity(ctx context.Context, id uuid.UUID) (*entity.Opportunity, error) {
	opportunity, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if opportunity == nil {
		return nil, apperror.NewNotFoundError("Opportunity")
	}
	return opportunity, nil
}

// ListOpportunities lists opportunities with filters
func (s *OpportunityService) ListOpportunities(ctx context.Context, params *repository.OpportunityFilterParams) (*pagination.PaginatedResult[entity.Opportunity], error) {
	opportunities, total, err := s.opportunityRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(opportunities, pag), nil
}

// UpdateOpportunityInput represents the update opportunity input.
// The stage is changed through ChangeStage only.
type UpdateOpportunityInput struct {
	ID                uuid.UUID
	Title             *string
	Value             *decimal.Decimal
	Probability       *int
	ExpectedCloseDate *time.Time
	ClientID          *uuid.UUID
	LeadID            *uuid.UUID
	AssignedToID      *uuid.UUID
	Notes             *string
}

// UpdateOpportunity updates an opportunity
func (s *OpportunityService) UpdateOpportunity(ctx context.Context, input *UpdateOpportunityInput) (*entity.Opportunity, error) {
	opportunity, err := s.GetOpportunity(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		opportunity.Title = strings.TrimSpace(*input.Title)
	}
	if input.Value != nil {
		opportunity.Value = *input.Value
	}
	if input.Probability != nil {
		opportunity.Probability = *input.Probability
	}
	if input.ExpectedCloseDate != nil {
		opportunity.ExpectedCloseDate = input.ExpectedCloseDate
	}
	// switching the owner side clears the other one
	if input.ClientID != nil {
		opportunity.ClientID = input.ClientID
		opportunity.LeadID = nil
		opportunity.Client = nil
		opportunity.Lead = nil
	} else if input.LeadID != nil {
		opportunity.LeadID = input.LeadID
		opportunity.ClientID = nil
		opportunity.Client = nil
		opportunity.Lead = nil
	}
	if input.AssignedToID != nil {
		opportunity.AssignedToID = input.AssignedToID
		opportunity.AssignedTo = nil
	}
	if input.Notes != nil {
		opportunity.Notes = input.Notes
	}

	if err := s.validate(ctx, opportunity); err != nil {
		return nil, err
	}
	if err := s.opportunityRepo.Update(ctx, opportunity); err != nil {
		return nil, err
	}
	invalidate(ctx, s.invalidator, opportunity.TenantID)

	return s.GetOpportunity(ctx, opportunity.ID)
}

// DeleteOpportunity deletes an opportunity
func (s *OpportunityService) DeleteOpportunity(ctx context.Context, id uuid.UUID) error {
	opportunity, err := s.GetOpportunity(ctx, id)
	if err != nil {
		return err
	}
	if err := s.opportunityRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.invalidator, opportunity.TenantID)
	return nil
}

// ChangeStageInput moves an opportunity to another pipeline stage
type ChangeStageInput struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Stage  enum.OpportunityStage
}

// ChangeStage moves an opportunity to a new stage. Moving to the current
// stage returns the opportunity untouched.
func (s *OpportunityService) ChangeStage(ctx context.Context, input *ChangeStageInput) (*entity.Opportunity, error) {
	opportunity, err := s.GetOpportunity(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	changed, err := s.applyStage(ctx, opportunity, input.Stage, input.UserID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return opportunity, nil
	}
	invalidate(ctx, s.invalidator, opportunity.TenantID)

	return s.GetOpportunity(ctx, opportunity.ID)
}

// BulkChangeStageInput applies one stage to many opportunities
type BulkChangeStageInput struct {
	IDs    []uuid.UUID
	UserID uuid.UUID
	Stage  enum.OpportunityStage
}

// BulkStageResult reports what happened to each requested id
type BulkStageResult struct {
	Updated   []uuid.UUID `json:"updated"`
	Unchanged []uuid.UUID `json:"unchanged"`
	NotFound  []uuid.UUID `json:"not_found"`
}

// BulkChangeStage moves several opportunities at once. Unknown ids are
// reported, not treated as an error.
func (s *OpportunityService) BulkChangeStage(ctx context.Context, input *BulkChangeStageInput) (*BulkStageResult, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	if !input.Stage.IsValid() {
		return nil, apperror.NewFieldError("stage", "Invalid opportunity stage")
	}
	if len(input.IDs) == 0 {
		return nil, apperror.NewFieldError("ids", "At least one opportunity is required")
	}

	opportunities, err := s.opportunityRepo.GetByIDs(ctx, input.IDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Opportunity, len(opportunities))
	for i := range opportunities {
		byID[opportunities[i].ID] = &opportunities[i]
	}

	result := &BulkStageResult{
		Updated:   []uuid.UUID{},
		Unchanged: []uuid.UUID{},
		NotFound:  []uuid.UUID{},
	}
	seen := make(map[uuid.UUID]bool, len(input.IDs))
	for _, id := range input.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		opportunity, ok := byID[id]
		if !ok {
			result.NotFound = append(result.NotFound, id)
			continue
		}
		changed, err := s.applyStage(ctx, opportunity, input.Stage, input.UserID)
		if err != nil {
			return nil, err
		}
		if changed {
			result.Updated = append(result.Updated, id)
		} else {
			result.Unchanged = append(result.Unchanged, id)
		}
	}

	if len(result.Updated) > 0 {
		invalidate(ctx, s.invalidator, tenantID)
	}
	return result, nil
}

func (s *OpportunityService) applyStage(ctx context.Context, opportunity *entity.Opportunity, stage enum.OpportunityStage, actorID uuid.UUID) (bool, error) {
	changed, err := pipeline.ChangeStage(opportunity.Deal(), stage)
	if errors.Is(err, pipeline.ErrInvalidStage) {
		return false, apperror.NewFieldError("stage", "Invalid opportunity stage")
	}
	if err != nil || !changed {
		return false, err
	}

	previous := opportunity.Stage
	if err := s.opportunityRepo.UpdateStage(ctx, opportunity.ID, stage); err != nil {
		return false, err
	}
	opportunity.Stage = stage

	e := event.New(event.OpportunityStageChanged, opportunity.TenantID, opportunity.ID, map[string]any{
		"from": previous,
		"to":   stage,
	})
	if actorID != uuid.Nil {
		e.ActorID = &actorID
	}
	publish(ctx, s.publisher, e)
	return true, nil
}

// OpportunityCard is an opportunity with its attention classification
type OpportunityCard struct {
	entity.Opportunity
	Health        pipeline.Health `json:"health"`
	HealthMessage string          `json:"health_message,omitempty"`
}

// BoardColumn groups the opportunities of one stage
type BoardColumn struct {
	Stage           enum.OpportunityStage `json:"stage"`
	Label           string                `json:"label"`
	Count           int                   `json:"count"`
	TotalValue      decimal.Decimal       `json:"total_value"`
	ExpectedRevenue decimal.Decimal       `json:"expected_revenue"`
	Items           []OpportunityCard     `json:"items"`
}

// Board returns one column per stage in display order, empty stages included
func (s *OpportunityService) Board(ctx context.Context) ([]BoardColumn, error) {
	if _, err := requireTenant(ctx); err != nil {
		return nil, err
	}

	opportunities, err := s.opportunityRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stages := enum.AllOpportunityStages()
	columns := make([]BoardColumn, len(stages))
	position := make(map[enum.OpportunityStage]int, len(stages))
	for i, stage := range stages {
		columns[i] = BoardColumn{
			Stage:           stage,
			Label:           stage.Label(),
			TotalValue:      decimal.Zero,
			ExpectedRevenue: decimal.Zero,
			Items:           []OpportunityCard{},
		}
		position[stage] = i
	}

	now := s.now()
	for _, o := range opportunities {
		i, ok := position[o.Stage]
		if !ok {
			continue
		}
		col := &columns[i]
		col.Items = append(col.Items, s.card(o, now))
		col.Count++
		col.TotalValue = col.TotalValue.Add(o.Value)
		col.ExpectedRevenue = col.ExpectedRevenue.Add(pipeline.ExpectedRevenue(o.Value, o.Probability))
	}

	return columns, nil
}

// Attention returns the open opportunities that are overdue or stale
func (s *OpportunityService) Attention(ctx context.Context) ([]OpportunityCard, error) {
	if _, err := requireTenant(ctx); err != nil {
		return nil, err
	}

	opportunities, err := s.opportunityRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cards := []OpportunityCard{}
	for _, o := range opportunities {
		if pipeline.NeedsAttention(o.Deal(), now) {
			cards = append(cards, s.card(o, now))
		}
	}
	return cards, nil
}

func (s *OpportunityService) card(o entity.Opportunity, now time.Time) OpportunityCard {
	health := pipeline.Classify(o.Deal(), now)
	return OpportunityCard{Opportunity: o, Health: health, HealthMessage: health.Message()}
}

func (s *OpportunityService) validate(ctx context.Context, o *entity.Opportunity) error {
	var errs []apperror.FieldError

	if o.Title == "" {
		errs = append(errs, apperror.FieldError{Field: "title", Message: "Title is required"})
	}
	if !o.Stage.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "stage", Message: "Invalid opportunity stage"})
	}
	if o.Probability < 0 || o.Probability > 100 {
		errs = append(errs, apperror.FieldError{Field: "probability", Message: "Probability must be between 0 and 100"})
	}
	if o.Value.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "value", Message: "Value cannot be negative"})
	}

	switch {
	case o.ClientID == nil && o.LeadID == nil:
		errs = append(errs, apperror.FieldError{Field: "client_id", Message: "A client or a lead is required"})
	case o.ClientID != nil && o.LeadID != nil:
		errs = append(errs, apperror.FieldError{Field: "lead_id", Message: "An opportunity belongs to either a client or a lead"})
	case o.ClientID != nil:
		client, err := s.clientRepo.GetByID(ctx, *o.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			errs = append(errs, apperror.FieldError{Field: "client_id", Message: "Client not found"})
		}
	default:
		lead, err := s.leadRepo.GetByID(ctx, *o.LeadID)
		if err != nil {
			return err
		}
		if lead == nil {
			errs = append(errs, apperror.FieldError{Field: "lead_id", Message: "Lead not found"})
		}
	}

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
