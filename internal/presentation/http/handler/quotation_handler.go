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

// QuotationHandler handles quotation-related HTTP requests
type QuotationHandler struct {
	quotationService *service.QuotationService
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(quotationService *service.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

func quotationItems(items []request.QuotationItemRequest) []service.QuotationItemInput {
	out := make([]service.QuotationItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, service.QuotationItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}

func discountTypeOf(s string) enum.DiscountType {
	return enum.DiscountType(strings.ToUpper(strings.TrimSpace(s)))
}

// List handles listing quotations
// @Summary List Quotations
// @Description Get all quotations with pagination and filtering
// @Tags quotations
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Success 200 {object} response.APIResponse
// @Router /quotations [get]
func (h *QuotationHandler) List(c *gin.Context) {
	var req request.QuotationFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	clientID, err := queryUUID(req.ClientID, "client_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	opportunityID, err := queryUUID(req.OpportunityID, "opportunity_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	params := &repository.QuotationFilterParams{
		Pagination:    pageParams(c),
		Search:        req.Search,
		ClientID:      clientID,
		OpportunityID: opportunityID,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}
	if req.Status != "" {
		status := enum.QuotationStatus(strings.ToUpper(req.Status))
		if !status.IsValid() {
			response.Error(c, apperror.NewFieldError("status", "is not a valid quotation status"))
			return
		}
		params.Status = &status
	}

	result, err := h.quotationService.ListQuotations(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Quotations retrieved successfully", result)
}

// Get handles getting a single quotation
// @Summary Get Quotation
// @Tags quotations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} response.APIResponse
// @Router /quotations/{id} [get]
func (h *QuotationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "quotation")
	if !ok {
		return
	}

	quotation, err := h.quotationService.GetQuotation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation retrieved successfully", quotation)
}

// Create handles creating a draft quotation
// @Summary Create Quotation
// @Description Totals are computed on the server from the items and discount
// @Tags quotations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateQuotationRequest true "Quotation"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /quotations [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request.CreateQuotationRequest
	if !bindJSON(c, &req) {
		return
	}

	quotation, err := h.quotationService.CreateQuotation(c.Request.Context(), &service.CreateQuotationInput{
		UserID:        userID,
		Title:         req.Title,
		ClientID:      req.ClientID,
		OpportunityID: req.OpportunityID,
		Currency:      req.Currency,
		DiscountType:  discountTypeOf(req.DiscountType),
		DiscountValue: req.DiscountValue,
		ValidUntil:    req.ValidUntil,
		Notes:         req.Notes,
		Items:         quotationItems(req.Items),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quotation created successfully", quotation)
}

// Preview computes totals without saving
// @Summary Preview Quotation Totals
// @Tags quotations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.PreviewQuotationRequest true "Items and discount"
// @Success 200 {object} response.APIResponse
// @Router /quotations/preview [post]
func (h *QuotationHandler) Preview(c *gin.Context) {
	var req request.PreviewQuotationRequest
	if !bindJSON(c, &req) {
		return
	}

	preview, err := h.quotationService.PreviewQuotation(c.Request.Context(), &service.PreviewQuotationInput{
		Currency:      req.Currency,
		DiscountType:  discountTypeOf(req.DiscountType),
		DiscountValue: req.DiscountValue,
		Items:         quotationItems(req.Items),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation totals computed", preview)
}

// Update handles updating a draft quotation
// @Summary Update Quotation
// @Tags quotations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "quotation")
	if !ok {
		return
	}

	var req request.UpdateQuotationRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateQuotationInput{
		ID:            id,
		Title:         req.Title,
		ClientID:      req.ClientID,
		OpportunityID: req.OpportunityID,
		Currency:      req.Currency,
		DiscountValue: req.DiscountValue,
		ValidUntil:    req.ValidUntil,
		Notes:         req.Notes,
	}
	if req.DiscountType != nil {
		dt := discountTypeOf(*req.DiscountType)
		input.DiscountType = &dt
	}
	if len(req.Items) > 0 {
		input.Items = quotationItems(req.Items)
	}

	quotation, err := h.quotationService.UpdateQuotation(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation updated successfully", quotation)
}

// Delete handles deleting a draft quotation
// @Summary Delete Quotation
// @Tags quotations
// @Security BearerAuth
// @Param id path string true "Quotation ID"
// @Success 204
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "quotation")
	if !ok {
		return
	}

	if err := h.quotationService.DeleteQuotation(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// UpdateStatus moves a quotation through its lifecycle
// @Summary Update Quotation Status
// @Description Moving to SENT emails the quotation to the client
// @Tags quotations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /quotations/{id}/status [patch]
func (h *QuotationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "quotation")
	if !ok {
		return
	}

	var req request.UpdateQuotationStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	quotation, err := h.quotationService.UpdateQuotationStatus(c.Request.Context(), &service.UpdateStatusInput{
		ID:     id,
		UserID: userID,
		Status: enum.QuotationStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation status updated successfully", quotation)
}

// Convert closes an accepted quotation and wins its opportunity
// @Summary Convert Quotation
// @Tags quotations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /quotations/{id}/convert [post]
func (h *QuotationHandler) Convert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "quotation")
	if !ok {
		return
	}

	quotation, err := h.quotationService.ConvertQuotation(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quotation converted successfully", quotation)
}
