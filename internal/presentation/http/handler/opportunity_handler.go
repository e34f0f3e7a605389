package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cowork-api/internal/application/service"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/request"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/response"
	"github.com/sangkips/cowork-api/pkg/apperror"
)

// OpportunityHandler handles the sales pipeline endpoints
type OpportunityHandler struct {
	opportunityService *service.OpportunityService
}

// NewOpportunityHandler creates a new opportunity handler
func NewOpportunityHandler(opportunityService *service.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{opportunityService: opportunityService}
}

func stageOf(s string) enum.OpportunityStage {
	return enum.OpportunityStage(strings.ToUpper(strings.TrimSpace(s)))
}

// List handles listing opportunities with filters
func (h *OpportunityHandler) List(c *gin.Context) {
	var req request.OpportunityFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	clientID, err := queryUUID(req.ClientID, "client_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignedTo, err := queryUUID(req.AssignedToID, "assigned_to_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	params := &repository.OpportunityFilterParams{
		Pagination:   pageParams(c),
		Search:       req.Search,
		ClientID:     clientID,
		AssignedToID: assignedTo,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
	}
	if req.Stage != "" {
		stage := stageOf(req.Stage)
		if !stage.IsValid() {
			response.Error(c, apperror.NewFieldError("stage", "is not a valid pipeline stage"))
			return
		}
		params.Stage = &stage
	}

	result, err := h.opportunityService.ListOpportunities(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Opportunities retrieved successfully", result)
}

// Create handles creating an opportunity
func (h *OpportunityHandler) Create(c *gin.Context) {
	var req request.CreateOpportunityRequest
	if !bindJSON(c, &req) {
		return
	}

	opportunity, err := h.opportunityService.CreateOpportunity(c.Request.Context(), &service.CreateOpportunityInput{
		Title:             req.Title,
		Stage:             stageOf(req.Stage),
		Value:             req.Value,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		ClientID:          req.ClientID,
		LeadID:            req.LeadID,
		AssignedToID:      req.AssignedToID,
		Notes:             req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Opportunity created successfully", opportunity)
}

// Get handles getting a single opportunity
func (h *OpportunityHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "opportunity")
	if !ok {
		return
	}

	opportunity, err := h.opportunityService.GetOpportunity(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Opportunity retrieved successfully", opportunity)
}

// Update handles updating an opportunity
func (h *OpportunityHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "opportunity")
	if !ok {
		return
	}

	var req request.UpdateOpportunityRequest
	if !bindJSON(c, &req) {
		return
	}

	opportunity, err := h.opportunityService.UpdateOpportunity(c.Request.Context(), &service.UpdateOpportunityInput{
		ID:                id,
		Title:             req.Title,
		Value:             req.Value,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		ClientID:          req.ClientID,
		LeadID:            req.LeadID,
		AssignedToID:      req.AssignedToID,
		Notes:             req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Opportunity updated successfully", opportunity)
}

// Delete handles deleting an opportunity
func (h *OpportunityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "opportunity")
	if !ok {
		return
	}

	if err := h.opportunityService.DeleteOpportunity(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ChangeStage moves one opportunity to a stage
func (h *OpportunityHandler) ChangeStage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "opportunity")
	if !ok {
		return
	}

	var req request.ChangeStageRequest
	if !bindJSON(c, &req) {
		return
	}

	opportunity, err := h.opportunityService.ChangeStage(c.Request.Context(), &service.ChangeStageInput{
		ID:     id,
		UserID: userID,
		Stage:  stageOf(req.Stage),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stage updated successfully", opportunity)
}

// BulkChangeStage moves many opportunities to one stage
func (h *OpportunityHandler) BulkChangeStage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request.BulkStageRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.opportunityService.BulkChangeStage(c.Request.Context(), &service.BulkChangeStageInput{
		IDs:    req.IDs,
		UserID: userID,
		Stage:  stageOf(req.Stage),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stages updated successfully", result)
}

// Board returns the Kanban columns
func (h *OpportunityHandler) Board(c *gin.Context) {
	columns, err := h.opportunityService.Board(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Pipeline board retrieved successfully", columns)
}

// Attention returns the overdue and stale opportunities
func (h *OpportunityHandler) Attention(c *gin.Context) {
	cards, err := h.opportunityService.Attention(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Opportunities needing attention retrieved successfully", cards)
}
