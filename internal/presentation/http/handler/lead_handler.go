package handler

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cowork-api/internal/application/service"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/request"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/response"
	"github.com/sangkips/cowork-api/pkg/apperror"
)

const (
	maxImportSize = 5 << 20
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// LeadHandler handles lead-related HTTP requests
type LeadHandler struct {
	leadService *service.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// List handles listing leads with filters
func (h *LeadHandler) List(c *gin.Context) {
	var req request.LeadFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	assignedTo, err := queryUUID(req.AssignedToID, "assigned_to_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	params := &repository.LeadFilterParams{
		Pagination:   pageParams(c),
		Search:       req.Search,
		Source:       req.Source,
		AssignedToID: assignedTo,
	}
	if req.Status != "" {
		status := enum.LeadStatus(strings.ToUpper(req.Status))
		if !status.IsValid() {
			response.Error(c, apperror.NewFieldError("status", "is not a valid lead status"))
			return
		}
		params.Status = &status
	}

	result, err := h.leadService.ListLeads(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Leads retrieved successfully", result)
}

// Create handles creating a lead
func (h *LeadHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request.CreateLeadRequest
	if !bindJSON(c, &req) {
		return
	}

	lead, err := h.leadService.CreateLead(c.Request.Context(), &service.CreateLeadInput{
		UserID:       userID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      req.Company,
		Source:       req.Source,
		Status:       enum.LeadStatus(strings.ToUpper(req.Status)),
		AssignedToID: req.AssignedToID,
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Lead created successfully", lead)
}

// Get handles getting a single lead
func (h *LeadHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "lead")
	if !ok {
		return
	}

	lead, err := h.leadService.GetLead(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lead retrieved successfully", lead)
}

// Update handles updating a lead
func (h *LeadHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "lead")
	if !ok {
		return
	}

	var req request.UpdateLeadRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateLeadInput{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      req.Company,
		Source:       req.Source,
		AssignedToID: req.AssignedToID,
		Notes:        req.Notes,
	}
	if req.Status != nil {
		status := enum.LeadStatus(strings.ToUpper(*req.Status))
		input.Status = &status
	}

	lead, err := h.leadService.UpdateLead(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lead updated successfully", lead)
}

// Delete handles deleting a lead
func (h *LeadHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "lead")
	if !ok {
		return
	}

	if err := h.leadService.DeleteLead(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Convert turns a lead into an opportunity
func (h *LeadHandler) Convert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "lead")
	if !ok {
		return
	}

	var req request.ConvertLeadRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	lead, opportunity, err := h.leadService.ConvertLead(c.Request.Context(), &service.ConvertLeadInput{
		ID:                id,
		UserID:            userID,
		Title:             req.Title,
		Value:             req.Value,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Lead converted successfully", gin.H{
		"lead":        lead,
		"opportunity": opportunity,
	})
}

// Import reads an XLSX upload and creates one lead per row
func (h *LeadHandler) Import(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "An XLSX file is required in the \"file\" field")
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".xlsx") {
		response.BadRequest(c, "Only .xlsx files are supported")
		return
	}
	if file.Size > maxImportSize {
		response.BadRequest(c, "File exceeds the 5MB limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer src.Close()

	rows, err := service.ParseLeadSheet(src)
	if err != nil {
		response.BadRequest(c, "Invalid spreadsheet: "+err.Error())
		return
	}

	result, err := h.leadService.ImportLeads(c.Request.Context(), userID, rows)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lead import finished", result)
}

// Template downloads an empty import workbook
func (h *LeadHandler) Template(c *gin.Context) {
	var buf bytes.Buffer
	if err := service.LeadSheetTemplate(&buf); err != nil {
		response.InternalServerError(c, "Unable to build template")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="leads_template.xlsx"`)
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}
