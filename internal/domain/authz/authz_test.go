package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		principal  Principal
		permission string
		want       bool
	}{
		{
			name:       "anonymous is denied",
			principal:  Principal{Permissions: []string{ManageLeads}},
			permission: ManageLeads,
			want:       false,
		},
		{
			name:       "granted permission",
			principal:  Principal{UserID: userID, Roles: []string{RoleSales}, Permissions: []string{ManageLeads, ManageOpportunities}},
			permission: ManageOpportunities,
			want:       true,
		},
		{
			name:       "missing permission",
			principal:  Principal{UserID: userID, Roles: []string{RoleStaff}, Permissions: []string{ManageBookings}},
			permission: ManageQuotations,
			want:       false,
		},
		{
			name:       "super admin passes every check",
			principal:  Principal{UserID: userID, Roles: []string{RoleSuperAdmin}},
			permission: ManageCoworks,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.principal, tt.permission))
		})
	}
}

func TestSuperAdminHoldsAllPermissions(t *testing.T) {
	p := Principal{UserID: uuid.New(), Roles: []string{RoleSuperAdmin}}
	for _, perm := range AllPermissions() {
		assert.True(t, Can(p, perm), perm)
	}
}

func TestCanAnyAndHasRole(t *testing.T) {
	p := Principal{UserID: uuid.New(), Roles: []string{RoleStaff}, Permissions: []string{ManageSpaces}}

	assert.True(t, CanAny(p, ManageBookings, ManageSpaces))
	assert.False(t, CanAny(p, ManageBookings, ManageClients))
	assert.True(t, HasRole(p, RoleAdmin, RoleStaff))
	assert.False(t, HasRole(p, RoleAdmin))
}

func TestCanAdministerCowork(t *testing.T) {
	id := uuid.New()
	assert.True(t, CanAdministerCowork(Principal{UserID: id, TenantRole: "owner"}))
	assert.True(t, CanAdministerCowork(Principal{UserID: id, TenantRole: "admin"}))
	assert.False(t, CanAdministerCowork(Principal{UserID: id, TenantRole: "member"}))
	assert.True(t, CanAdministerCowork(Principal{UserID: id, Roles: []string{RoleSuperAdmin}}))
}
