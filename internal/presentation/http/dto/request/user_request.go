package request

// UpdateUserRolesRequest replaces the global roles of a user
type UpdateUserRolesRequest struct {
	RoleIDs []uint `json:"role_ids" binding:"required,min=1"`
}
