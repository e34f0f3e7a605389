package service

import (
	"testing"

	"github.com/sangkips/cowork-api/internal/domain/authz"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/sangkips/cowork-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) tenantService() *TenantService {
	return NewTenantService(repository.NewTenantRepository(f.db), repository.NewUserRepository(f.db), f.mailer)
}

func TestCreateTenant(t *testing.T) {
	f := newFixture(t)
	svc := f.tenantService()

	tenant, err := svc.CreateTenant(t.Context(), &CreateTenantInput{Name: "Casa Cowork Providencia", OwnerID: f.owner.ID})
	require.NoError(t, err)

	assert.Equal(t, "casa-cowork-providencia", tenant.Slug)
	assert.True(t, tenant.IsActive)
	assert.Equal(t, entity.DefaultTenantSettings(), tenant.Settings)

	membership, err := svc.GetMembership(t.Context(), tenant.ID, f.owner.ID)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, entity.MemberRoleOwner, membership.Role)

	_, err = svc.CreateTenant(t.Context(), &CreateTenantInput{Name: "Otra", Slug: "Casa Cowork Providencia", OwnerID: f.owner.ID})
	assertStatus(t, err, 409)

	_, err = svc.CreateTenant(t.Context(), &CreateTenantInput{Name: " ", OwnerID: f.owner.ID})
	assertField(t, err, "name")
}

func TestCreateTenantValidatesSettings(t *testing.T) {
	f := newFixture(t)
	svc := f.tenantService()

	_, err := svc.CreateTenant(t.Context(), &CreateTenantInput{
		Name:     "Base",
		OwnerID:  f.owner.ID,
		Settings: &entity.TenantSettings{Currency: "PESOS", Timezone: "Mars/Olympus"},
	})
	assertField(t, err, "settings.currency")
	assertField(t, err, "settings.timezone")

	tenant, err := svc.CreateTenant(t.Context(), &CreateTenantInput{
		Name:     "Base",
		OwnerID:  f.owner.ID,
		Settings: &entity.TenantSettings{Currency: "usd", QuotationPrefix: "Q-"},
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", tenant.Settings.Currency)
	assert.Equal(t, "Q-", tenant.Settings.QuotationPrefix)
	assert.Equal(t, "America/Santiago", tenant.Settings.Timezone)
	assert.Equal(t, 30, tenant.Settings.QuotationValidityDays)
	assert.False(t, tenant.Settings.EmailNotifications)
}

func TestResolveTenant(t *testing.T) {
	f := newFixture(t)
	svc := f.tenantService()

	byID, err := svc.ResolveTenant(t.Context(), f.tenant.ID.String())
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, f.tenant.ID, byID.ID)

	bySlug, err := svc.ResolveTenant(t.Context(), "NOMADA")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, f.tenant.ID, bySlug.ID)

	missing, err := svc.ResolveTenant(t.Context(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInviteMember(t *testing.T) {
	f := newFixture(t)
	svc := f.tenantService()
	guest := testutil.CreateUser(t, f.db, "guest@example.com", authz.RoleUser)

	membership, err := svc.InviteMember(t.Context(), &InviteMemberInput{
		TenantID:  f.tenant.ID,
		InviterID: f.owner.ID,
		Email:     " Guest@Example.com ",
		Role:      entity.MemberRoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, membership.UserID)
	assert.Equal(t, entity.MemberRoleAdmin, membership.Role)
	require.NotNil(t, membership.MemberUser)
	assert.Equal(t, "guest@example.com", membership.MemberUser.Email)
	assert.Equal(t, []string{"guest@example.com"}, f.mailer.invites)

	_, err = svc.InviteMember(t.Context(), &InviteMemberInput{TenantID: f.tenant.ID, Email: "guest@example.com"})
	assertStatus(t, err, 409)

	_, err = svc.InviteMember(t.Context(), &InviteMemberInput{TenantID: f.tenant.ID, Email: "nobody@example.com"})
	assertStatus(t, err, 404)

	_, err = svc.InviteMember(t.Context(), &InviteMemberInput{TenantID: f.tenant.ID, Email: "guest@example.com", Role: entity.MemberRoleOwner})
	assertField(t, err, "role")

	members, err := svc.GetTenantMembers(t.Context(), f.tenant.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestOwnerMembershipIsProtected(t *testing.T) {
	f := newFixture(t)
	svc := f.tenantService()
	guest := testutil.CreateUser(t, f.db, "guest@example.com", authz.RoleUser)
	_, err := svc.InviteMember(t.Context(), &InviteMemberInput{TenantID: f.tenant.ID, Email: guest.Email})
	require.NoError(t, err)

	assertStatus(t, svc.UpdateMemberRole(t.Context(), f.tenant.ID, f.owner.ID, entity.MemberRoleMember), 403)
	assertStatus(t, svc.RemoveMember(t.Context(), f.tenant.ID, f.owner.ID), 403)

	require.NoError(t, svc.UpdateMemberRole(t.Context(), f.tenant.ID, guest.ID, entity.MemberRoleAdmin))
	membership, err := svc.GetMembership(t.Context(), f.tenant.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MemberRoleAdmin, membership.Role)

	require.NoError(t, svc.RemoveMember(t.Context(), f.tenant.ID, guest.ID))
	assertStatus(t, svc.RemoveMember(t.Context(), f.tenant.ID, guest.ID), 404)
}

func TestListTenants(t *testing.T) {
	f := newFixture(t)
	svc := f.tenantService()
	f.otherCowork(t)

	mine, err := svc.ListTenants(t.Context(), f.owner.ID, false, defaultPage())
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "nomada", mine.Items[0].Slug)

	all, err := svc.ListTenants(t.Context(), f.owner.ID, true, defaultPage())
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	inactive := false
	_, err = svc.UpdateTenant(t.Context(), &UpdateTenantInput{ID: f.tenant.ID, IsActive: &inactive})
	require.NoError(t, err)

	active, err := svc.ListActiveTenants(t.Context())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "otro", active[0].Slug)
}
