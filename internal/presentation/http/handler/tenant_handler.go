package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/cowork-api/internal/application/service"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/request"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/response"
	"github.com/sangkips/cowork-api/internal/presentation/http/middleware"
)

// TenantHandler handles cowork-related HTTP requests
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// CreateTenant creates a cowork owned by the caller
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request.CreateTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), &service.CreateTenantInput{
		Name:     req.Name,
		Slug:     req.Slug,
		OwnerID:  userID,
		Settings: req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cowork created successfully", gin.H{"tenant": tenant})
}

// ListTenants returns all coworks for super admins, or only the coworks the user belongs to
func (h *TenantHandler) ListTenants(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.tenantService.ListTenants(c.Request.Context(), userID, IsSuperAdmin(c), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Coworks retrieved successfully", result)
}

// GetCurrentTenant returns the active cowork
func (h *TenantHandler) GetCurrentTenant(c *gin.Context) {
	tenant, err := h.tenantService.GetTenant(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cowork retrieved successfully", gin.H{
		"tenant": tenant,
		"role":   c.GetString("tenant_role"),
	})
}

// UpdateTenant updates the active cowork
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req request.UpdateTenantRequest
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), &service.UpdateTenantInput{
		ID:       middleware.GetTenantID(c),
		Name:     req.Name,
		IsActive: req.IsActive,
		Settings: req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cowork updated successfully", gin.H{"tenant": tenant})
}

// GetSettings returns the settings of the active cowork
func (h *TenantHandler) GetSettings(c *gin.Context) {
	tenant, err := h.tenantService.GetTenant(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", tenant.Settings)
}

// UpdateSettings replaces the settings of the active cowork
func (h *TenantHandler) UpdateSettings(c *gin.Context) {
	var settings entity.TenantSettings
	if !bindJSON(c, &settings) {
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), &service.UpdateTenantInput{
		ID:       middleware.GetTenantID(c),
		Settings: &settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", tenant.Settings)
}

// ListMembers returns all members of the active cowork
func (h *TenantHandler) ListMembers(c *gin.Context) {
	members, err := h.tenantService.GetTenantMembers(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Members retrieved successfully", gin.H{"members": members})
}

// InviteMember adds a registered user to the active cowork and emails them
func (h *TenantHandler) InviteMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request.InviteMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	membership, err := h.tenantService.InviteMember(c.Request.Context(), &service.InviteMemberInput{
		TenantID:  middleware.GetTenantID(c),
		InviterID: userID,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Member invited successfully", gin.H{"member": membership})
}

// UpdateMemberRole updates a member's role in the active cowork
func (h *TenantHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := pathID(c, "user_id", "user")
	if !ok {
		return
	}

	var req request.UpdateMemberRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tenantService.UpdateMemberRole(c.Request.Context(), middleware.GetTenantID(c), userID, req.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member role updated successfully", nil)
}

// RemoveMember removes a user from the active cowork
func (h *TenantHandler) RemoveMember(c *gin.Context) {
	userID, ok := pathID(c, "user_id", "user")
	if !ok {
		return
	}

	if err := h.tenantService.RemoveMember(c.Request.Context(), middleware.GetTenantID(c), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Member removed successfully", nil)
}
