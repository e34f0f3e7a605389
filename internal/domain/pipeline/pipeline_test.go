package pipeline

import (
	"testing"
	"time"

	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return now.Add(-time.Duration(n) * 24 * time.Hour)
}

func TestChangeStage(t *testing.T) {
	d := Deal{Stage: enum.StageNegotiation, UpdatedAt: now}

	changed, err := ChangeStage(d, enum.StageNegotiation)
	require.NoError(t, err)
	assert.False(t, changed, "same stage is a no-op")

	changed, err = ChangeStage(d, enum.StageInitialContact)
	require.NoError(t, err)
	assert.True(t, changed, "moving backwards is allowed")

	changed, err = ChangeStage(Deal{Stage: enum.StageClosedLost}, enum.StageNegotiation)
	require.NoError(t, err)
	assert.True(t, changed, "terminal stages can be reopened")

	_, err = ChangeStage(d, enum.OpportunityStage("WON"))
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestTerminalStagesNeverNeedAttention(t *testing.T) {
	yesterday := now.Add(-24 * time.Hour)
	for _, stage := range []enum.OpportunityStage{enum.StageClosedWon, enum.StageClosedLost} {
		d := Deal{Stage: stage, UpdatedAt: daysAgo(90), ExpectedCloseDate: &yesterday}
		assert.False(t, IsStale(d, now), stage)
		assert.False(t, IsOverdue(d, now), stage)
		assert.False(t, NeedsAttention(d, now), stage)
		assert.Equal(t, HealthOK, Classify(d, now), stage)
	}
}

func TestIsStale(t *testing.T) {
	tests := []struct {
		name      string
		updatedAt time.Time
		want      bool
	}{
		{"updated today", now, false},
		{"exactly seven days", now.Add(-StaleAfter), false},
		{"one second past seven days", now.Add(-StaleAfter - time.Second), true},
		{"a month ago", daysAgo(30), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, stage := range enum.AllOpportunityStages() {
				if stage.IsTerminal() {
					continue
				}
				d := Deal{Stage: stage, UpdatedAt: tt.updatedAt}
				assert.Equal(t, tt.want, IsStale(d, now), stage)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, IsOverdue(Deal{Stage: enum.StageNegotiation}, now), "no close date")
	assert.True(t, IsOverdue(Deal{Stage: enum.StageNegotiation, ExpectedCloseDate: &past}, now))
	assert.False(t, IsOverdue(Deal{Stage: enum.StageNegotiation, ExpectedCloseDate: &future}, now))
	assert.False(t, IsOverdue(Deal{Stage: enum.StageNegotiation, ExpectedCloseDate: &now}, now), "equal to now is not overdue")
}

func TestClassifyOverdueTakesPrecedence(t *testing.T) {
	yesterday := now.Add(-24 * time.Hour)
	d := Deal{Stage: enum.StageNegotiation, UpdatedAt: daysAgo(20), ExpectedCloseDate: &yesterday}

	assert.True(t, IsOverdue(d, now))
	assert.True(t, IsStale(d, now))
	assert.True(t, NeedsAttention(d, now))
	assert.Equal(t, HealthOverdue, Classify(d, now))
	assert.Equal(t, "Expected close date has passed", Classify(d, now).Message())

	d.ExpectedCloseDate = nil
	assert.Equal(t, HealthStale, Classify(d, now))

	d.UpdatedAt = now
	assert.Equal(t, HealthOK, Classify(d, now))
	assert.Empty(t, Classify(d, now).Message())
}

func TestExpectedRevenue(t *testing.T) {
	assert.True(t, decimal.NewFromInt(37500).Equal(ExpectedRevenue(decimal.NewFromInt(150000), 25)))
	assert.True(t, decimal.Zero.Equal(ExpectedRevenue(decimal.NewFromInt(150000), 0)))
	assert.True(t, decimal.RequireFromString("999.99").Equal(ExpectedRevenue(decimal.RequireFromString("999.99"), 100)))
}
