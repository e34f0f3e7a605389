package request

import "github.com/sangkips/cowork-api/internal/domain/entity"

// CreateTenantRequest represents a cowork creation request
type CreateTenantRequest struct {
	Name     string                 `json:"name" binding:"required,max=255"`
	Slug     string                 `json:"slug" binding:"omitempty,max=100"`
	Settings *entity.TenantSettings `json:"settings"`
}

// UpdateTenantRequest represents a cowork update request
type UpdateTenantRequest struct {
	Name     *string                `json:"name" binding:"omitempty,max=255"`
	IsActive *bool                  `json:"is_active"`
	Settings *entity.TenantSettings `json:"settings"`
}

// InviteMemberRequest adds an existing user to the cowork
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

// UpdateMemberRoleRequest changes the role of a member
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
