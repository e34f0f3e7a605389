// Package authz decides whether a principal may perform an action.
// Handlers and middleware call Can before acting instead of relying on
// where a route sits in the tree.
package authz

import (
	"slices"

	"github.com/google/uuid"
)

// Permission names seeded into the permissions table
const (
	ManageClients       = "manage-clients"
	ManageLeads         = "manage-leads"
	ManageOpportunities = "manage-opportunities"
	ManageQuotations    = "manage-quotations"
	ManageSpaces        = "manage-spaces"
	ManageBookings      = "manage-bookings"
	ManageCoworks       = "manage-coworks"
	ViewDashboard       = "view-dashboard"
	ManageUsers         = "manage-users"
)

// Role names seeded into the roles table
const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
	RoleSales      = "sales"
	RoleStaff      = "staff"
	RoleUser       = "user"
)

// AllPermissions lists every permission the system knows about
func AllPermissions() []string {
	return []string{
		ManageClients,
		ManageLeads,
		ManageOpportunities,
		ManageQuotations,
		ManageSpaces,
		ManageBookings,
		ManageCoworks,
		ViewDashboard,
		ManageUsers,
	}
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID      uuid.UUID
	Roles       []string
	Permissions []string
	// TenantRole is the membership role in the active cowork, empty when none is selected
	TenantRole string
}

// IsSuperAdmin reports whether the principal bypasses every check
func (p Principal) IsSuperAdmin() bool {
	return slices.Contains(p.Roles, RoleSuperAdmin)
}

// Can reports whether the principal holds a permission
func Can(p Principal, permission string) bool {
	if p.UserID == uuid.Nil {
		return false
	}
	if p.IsSuperAdmin() {
		return true
	}
	return slices.Contains(p.Permissions, permission)
}

// CanAny reports whether the principal holds at least one of the permissions
func CanAny(p Principal, permissions ...string) bool {
	for _, perm := range permissions {
		if Can(p, perm) {
			return true
		}
	}
	return false
}

// HasRole reports whether the principal holds one of the roles
func HasRole(p Principal, roles ...string) bool {
	if p.IsSuperAdmin() {
		return true
	}
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// CanAdministerCowork reports whether the principal may change settings and
// members of the active cowork
func CanAdministerCowork(p Principal) bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.TenantRole == "owner" || p.TenantRole == "admin"
}
