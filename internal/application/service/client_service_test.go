package service

import (
	"testing"

	"github.com/sangkips/cowork-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientServiceCreateAndGet(t *testing.T) {
	f := newFixture(t)

	email := "  Hola@Acme.CL "
	client, err := f.clients.CreateClient(f.ctx, &CreateClientInput{UserID: f.owner.ID, Name: " Acme ", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Acme", client.Name)
	assert.Equal(t, "hola@acme.cl", *client.Email)
	assert.Equal(t, f.tenant.ID, client.TenantID)

	got, err := f.clients.GetClient(f.ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ID)
}

func TestClientServiceRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	email := "team@acme.cl"
	_, err := f.clients.CreateClient(f.ctx, &CreateClientInput{UserID: f.owner.ID, Name: "Acme", Email: &email})
	require.NoError(t, err)

	upper := "TEAM@acme.cl"
	_, err = f.clients.CreateClient(f.ctx, &CreateClientInput{UserID: f.owner.ID, Name: "Acme 2", Email: &upper})
	assertStatus(t, err, 409)
}

func TestClientServiceRequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.clients.CreateClient(f.ctx, &CreateClientInput{UserID: f.owner.ID, Name: "  "})
	assertField(t, err, "name")
}

func TestClientServiceIsTenantScoped(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "Acme")

	otherCtx := f.otherTenant(t)
	_, err := f.clients.GetClient(otherCtx, client.ID)
	assertStatus(t, err, 404)

	err = f.clients.DeleteClient(otherCtx, client.ID)
	assertStatus(t, err, 404)

	_, err = f.clients.GetClient(f.ctx, client.ID)
	require.NoError(t, err)
}

func TestClientServiceUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "Acme")

	name := "Acme SpA"
	company := "Acme Holding"
	updated, err := f.clients.UpdateClient(f.ctx, &UpdateClientInput{ID: client.ID, Name: &name, Company: &company})
	require.NoError(t, err)
	assert.Equal(t, "Acme SpA", updated.Name)
	assert.Equal(t, "Acme Holding", *updated.Company)

	require.NoError(t, f.clients.DeleteClient(f.ctx, client.ID))
	_, err = f.clients.GetClient(f.ctx, client.ID)
	assertStatus(t, err, 404)
}

func TestClientServiceListModes(t *testing.T) {
	f := newFixture(t)
	f.client(t, "Acme")
	f.client(t, "Beta Labs")
	f.client(t, "Cowork Friends")

	page, err := f.clients.ListClients(f.ctx, &pagination.UnifiedPaginationParams{Page: 1, PerPage: 2}, "")
	require.NoError(t, err)
	require.NotNil(t, page.Total)
	assert.EqualValues(t, 3, *page.Total)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasNext)

	searched, err := f.clients.ListClients(f.ctx, &pagination.UnifiedPaginationParams{Page: 1, PerPage: 10}, "beta")
	require.NoError(t, err)
	require.Len(t, searched.Items, 1)
	assert.Equal(t, "Beta Labs", searched.Items[0].Name)

	cursor, err := f.clients.ListClients(f.ctx, &pagination.UnifiedPaginationParams{Limit: 2}, "")
	require.NoError(t, err)
	assert.Len(t, cursor.Items, 2)
	assert.True(t, cursor.HasNext)
	assert.False(t, cursor.HasPrev)
	assert.NotNil(t, cursor.NextCursor)
	assert.Nil(t, cursor.Total)
}
