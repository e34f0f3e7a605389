package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/infrastructure/cache"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(t *testing.T, f *fixture) (*DashboardService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jsonCache := cache.NewJSONCache(cache.NewClient(rdb), "dashboard", time.Minute)
	dashboard := NewDashboardService(
		repository.NewOpportunityRepository(f.db),
		repository.NewQuotationRepository(f.db),
		jsonCache,
	)
	dashboard.now = fixedClock
	return dashboard, mr
}

func TestPipelineSummary(t *testing.T) {
	f := newFixture(t)
	dashboard, _ := newDashboard(t, f)

	f.opportunity(t, "A", 1000, 50)
	stale := f.opportunity(t, "B", 500, 10)
	f.touch(t, stale.ID, fixedNow.Add(-30*24*time.Hour))
	won := f.opportunity(t, "C", 2000, 90)
	_, err := f.opportunities.ChangeStage(f.ctx, &ChangeStageInput{ID: won.ID, Stage: enum.StageClosedWon})
	require.NoError(t, err)
	f.quotation(t)

	summary, err := dashboard.GetPipelineSummary(f.ctx)
	require.NoError(t, err)

	require.Len(t, summary.Stages, len(enum.AllOpportunityStages()))
	assert.Equal(t, enum.StageInitialContact, summary.Stages[0].Stage)
	assert.EqualValues(t, 2, summary.Stages[0].Count)

	assert.EqualValues(t, 2, summary.OpenCount)
	assert.True(t, decimal.NewFromInt(1500).Equal(summary.OpenValue))
	assert.True(t, decimal.NewFromInt(550).Equal(summary.WeightedValue))
	assert.True(t, decimal.NewFromInt(2000).Equal(summary.WonValue))
	assert.Equal(t, 1, summary.StaleCount)
	assert.Equal(t, 0, summary.OverdueCount)
	assert.Equal(t, 1, summary.AttentionCount)
	assert.EqualValues(t, 1, summary.QuotationCounts[enum.QuotationStatusDraft])
	assert.EqualValues(t, 0, summary.QuotationCounts[enum.QuotationStatusSent])
	assert.Equal(t, fixedNow, summary.GeneratedAt)
}

func TestPipelineSummaryIsCachedUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	dashboard, mr := newDashboard(t, f)
	f.opportunity(t, "A", 1000, 50)

	first, err := dashboard.GetPipelineSummary(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.OpenCount)
	assert.True(t, mr.Exists("dashboard:"+f.tenant.ID.String()))

	// written behind the service, so nothing invalidates the cache
	client := f.client(t, "Directo")
	require.NoError(t, f.db.Create(&entity.Opportunity{
		TenantID: f.tenant.ID,
		Title:    "Directo",
		Stage:    enum.StageNegotiation,
		Value:    decimal.NewFromInt(10),
		ClientID: &client.ID,
	}).Error)

	cached, err := dashboard.GetPipelineSummary(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cached.OpenCount)

	dashboard.Invalidate(f.ctx, f.tenant.ID)
	assert.False(t, mr.Exists("dashboard:"+f.tenant.ID.String()))

	fresh, err := dashboard.GetPipelineSummary(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fresh.OpenCount)
}

func TestPipelineSummaryWithoutCache(t *testing.T) {
	f := newFixture(t)
	dashboard := NewDashboardService(
		repository.NewOpportunityRepository(f.db),
		repository.NewQuotationRepository(f.db),
		cache.Noop{},
	)

	summary, err := dashboard.GetPipelineSummary(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.OpenCount)
	assert.True(t, summary.WonValue.IsZero())

	_, err = dashboard.GetPipelineSummary(t.Context())
	assertStatus(t, err, 400)
}
