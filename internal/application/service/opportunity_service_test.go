package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/pipeline"
	"github.com/sangkips/cowork-api/internal/infrastructure/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) opportunity(t *testing.T, title string, value int64, probability int) *entity.Opportunity {
	t.Helper()
	client := f.client(t, title+" Client")
	o, err := f.opportunities.CreateOpportunity(f.ctx, &CreateOpportunityInput{
		Title:       title,
		Value:       decimal.NewFromInt(value),
		Probability: probability,
		ClientID:    &client.ID,
	})
	require.NoError(t, err)
	return o
}

// touch rewrites updated_at without going through the model hooks
func (f *fixture) touch(t *testing.T, id uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Model(&entity.Opportunity{}).Where("id = ?", id).UpdateColumn("updated_at", at).Error)
}

func TestCreateOpportunityValidation(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "Acme")
	lead, err := f.leads.CreateLead(f.ctx, &CreateLeadInput{UserID: f.owner.ID, Name: "Ana"})
	require.NoError(t, err)
	missing := uuid.New()

	tests := []struct {
		name  string
		input CreateOpportunityInput
		field string
	}{
		{"title required", CreateOpportunityInput{ClientID: &client.ID}, "title"},
		{"unknown stage", CreateOpportunityInput{Title: "x", Stage: "WON", ClientID: &client.ID}, "stage"},
		{"probability above 100", CreateOpportunityInput{Title: "x", Probability: 101, ClientID: &client.ID}, "probability"},
		{"negative value", CreateOpportunityInput{Title: "x", Value: decimal.NewFromInt(-1), ClientID: &client.ID}, "value"},
		{"no owner", CreateOpportunityInput{Title: "x"}, "client_id"},
		{"client and lead", CreateOpportunityInput{Title: "x", ClientID: &client.ID, LeadID: &lead.ID}, "lead_id"},
		{"unknown client", CreateOpportunityInput{Title: "x", ClientID: &missing}, "client_id"},
		{"unknown lead", CreateOpportunityInput{Title: "x", LeadID: &missing}, "lead_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.opportunities.CreateOpportunity(f.ctx, &tt.input)
			assertField(t, err, tt.field)
		})
	}
}

func TestCreateOpportunityDefaults(t *testing.T) {
	f := newFixture(t)

	o := f.opportunity(t, "Oficina privada", 1200000, 25)

	assert.Equal(t, enum.StageInitialContact, o.Stage)
	assert.True(t, decimal.NewFromInt(300000).Equal(o.ExpectedRevenue))
	assert.Equal(t, 1, f.inv.count())
}

func TestUpdateOpportunitySwitchesOwner(t *testing.T) {
	f := newFixture(t)
	o := f.opportunity(t, "Oficina", 100, 10)
	lead, err := f.leads.CreateLead(f.ctx, &CreateLeadInput{UserID: f.owner.ID, Name: "Ana"})
	require.NoError(t, err)

	probability := 80
	updated, err := f.opportunities.UpdateOpportunity(f.ctx, &UpdateOpportunityInput{
		ID:          o.ID,
		LeadID:      &lead.ID,
		Probability: &probability,
	})
	require.NoError(t, err)

	assert.Nil(t, updated.ClientID)
	require.NotNil(t, updated.LeadID)
	assert.Equal(t, lead.ID, *updated.LeadID)
	assert.True(t, decimal.NewFromInt(80).Equal(updated.ExpectedRevenue))
}

func TestChangeStage(t *testing.T) {
	f := newFixture(t)
	o := f.opportunity(t, "Oficina", 100, 10)
	before := f.inv.count()

	moved, err := f.opportunities.ChangeStage(f.ctx, &ChangeStageInput{ID: o.ID, UserID: f.owner.ID, Stage: enum.StageNegotiation})
	require.NoError(t, err)
	assert.Equal(t, enum.StageNegotiation, moved.Stage)

	events := f.events.OfType(event.OpportunityStageChanged)
	require.Len(t, events, 1)
	assert.Equal(t, o.ID, events[0].AggregateID)
	assert.Equal(t, enum.StageInitialContact, events[0].Data["from"])
	assert.Equal(t, enum.StageNegotiation, events[0].Data["to"])
	require.NotNil(t, events[0].ActorID)
	assert.Equal(t, f.owner.ID, *events[0].ActorID)
	assert.Equal(t, before+1, f.inv.count())

	// moving backwards is allowed
	moved, err = f.opportunities.ChangeStage(f.ctx, &ChangeStageInput{ID: o.ID, Stage: enum.StageInitialContact})
	require.NoError(t, err)
	assert.Equal(t, enum.StageInitialContact, moved.Stage)
	assert.Len(t, f.events.OfType(event.OpportunityStageChanged), 2)
}

func TestChangeStageToSameStageIsNoop(t *testing.T) {
	f := newFixture(t)
	o := f.opportunity(t, "Oficina", 100, 10)
	before := f.inv.count()

	same, err := f.opportunities.ChangeStage(f.ctx, &ChangeStageInput{ID: o.ID, Stage: enum.StageInitialContact})
	require.NoError(t, err)

	assert.Equal(t, enum.StageInitialContact, same.Stage)
	assert.Empty(t, f.events.Events())
	assert.Equal(t, before, f.inv.count())
}

func TestChangeStageRejectsUnknownStage(t *testing.T) {
	f := newFixture(t)
	o := f.opportunity(t, "Oficina", 100, 10)

	_, err := f.opportunities.ChangeStage(f.ctx, &ChangeStageInput{ID: o.ID, Stage: "SIGNED"})
	assertField(t, err, "stage")

	stored, err := f.opportunities.GetOpportunity(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.StageInitialContact, stored.Stage)
}

func TestChangeStageIsTenantScoped(t *testing.T) {
	f := newFixture(t)
	o := f.opportunity(t, "Oficina", 100, 10)

	_, err := f.opportunities.ChangeStage(f.otherTenant(t), &ChangeStageInput{ID: o.ID, Stage: enum.StageOnHold})
	assertStatus(t, err, 404)
}

func TestBulkChangeStage(t *testing.T) {
	f := newFixture(t)
	a := f.opportunity(t, "A", 100, 10)
	b := f.opportunity(t, "B", 100, 10)
	_, err := f.opportunities.ChangeStage(f.ctx, &ChangeStageInput{ID: b.ID, Stage: enum.StageProposalSent})
	require.NoError(t, err)
	missing := uuid.New()

	result, err := f.opportunities.BulkChangeStage(f.ctx, &BulkChangeStageInput{
		IDs:    []uuid.UUID{a.ID, b.ID, a.ID, missing},
		UserID: f.owner.ID,
		Stage:  enum.StageProposalSent,
	})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{a.ID}, result.Updated)
	assert.Equal(t, []uuid.UUID{b.ID}, result.Unchanged)
	assert.Equal(t, []uuid.UUID{missing}, result.NotFound)
	assert.Len(t, f.events.OfType(event.OpportunityStageChanged), 2)

	_, err = f.opportunities.BulkChangeStage(f.ctx, &BulkChangeStageInput{IDs: []uuid.UUID{a.ID}, Stage: "NOPE"})
	assertField(t, err, "stage")
	_, err = f.opportunities.BulkChangeStage(f.ctx, &BulkChangeStageInput{Stage: enum.StageOnHold})
	assertField(t, err, "ids")
}

func TestBoardListsEveryStage(t *testing.T) {
	f := newFixture(t)
	f.opportunity(t, "A", 1000, 50)
	f.opportunity(t, "B", 500, 10)
	won := f.opportunity(t, "C", 300, 100)
	_, err := f.opportunities.ChangeStage(f.ctx, &ChangeStageInput{ID: won.ID, Stage: enum.StageClosedWon})
	require.NoError(t, err)

	columns, err := f.opportunities.Board(f.ctx)
	require.NoError(t, err)
	require.Len(t, columns, len(enum.AllOpportunityStages()))

	for i, stage := range enum.AllOpportunityStages() {
		assert.Equal(t, stage, columns[i].Stage)
		assert.Equal(t, stage.Label(), columns[i].Label)
	}

	initial := columns[0]
	assert.Equal(t, 2, initial.Count)
	assert.True(t, decimal.NewFromInt(1500).Equal(initial.TotalValue))
	assert.True(t, decimal.NewFromInt(550).Equal(initial.ExpectedRevenue))

	for _, col := range columns {
		if col.Stage == enum.StageClosedWon {
			assert.Equal(t, 1, col.Count)
			assert.Equal(t, pipeline.HealthOK, col.Items[0].Health)
		}
		if col.Stage == enum.StageNegotiation {
			assert.Empty(t, col.Items)
			assert.NotNil(t, col.Items)
		}
	}
}

func TestAttention(t *testing.T) {
	f := newFixture(t)

	fresh := f.opportunity(t, "Fresh", 100, 10)
	f.touch(t, fresh.ID, fixedNow.Add(-24*time.Hour))

	stale := f.opportunity(t, "Stale", 100, 10)
	f.touch(t, stale.ID, fixedNow.Add(-pipeline.StaleAfter-time.Hour))

	yesterday := fixedNow.Add(-24 * time.Hour)
	overdue, err := f.opportunities.UpdateOpportunity(f.ctx, &UpdateOpportunityInput{
		ID:                f.opportunity(t, "Overdue", 100, 10).ID,
		ExpectedCloseDate: &yesterday,
	})
	require.NoError(t, err)
	f.touch(t, overdue.ID, fixedNow.Add(-30*24*time.Hour))

	lost := f.opportunity(t, "Lost", 100, 10)
	_, err = f.opportunities.ChangeStage(f.ctx, &ChangeStageInput{ID: lost.ID, Stage: enum.StageClosedLost})
	require.NoError(t, err)
	f.touch(t, lost.ID, fixedNow.Add(-30*24*time.Hour))

	cards, err := f.opportunities.Attention(f.ctx)
	require.NoError(t, err)

	health := map[string]pipeline.Health{}
	for _, c := range cards {
		health[c.Title] = c.Health
		assert.NotEmpty(t, c.HealthMessage)
	}
	assert.Equal(t, map[string]pipeline.Health{
		"Overdue": pipeline.HealthOverdue,
		"Stale":   pipeline.HealthStale,
	}, health)
}
