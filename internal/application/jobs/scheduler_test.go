package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/application/service"
	"github.com/sangkips/cowork-api/internal/config"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/pipeline"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpirer struct {
	skipScope bool
	n         int
}

func (s *stubExpirer) ExpireQuotations(ctx context.Context) (int, error) {
	s.skipScope = repository.ShouldSkipTenantScope(ctx)
	return s.n, nil
}

type stubTenants []entity.Tenant

func (s stubTenants) ListActiveTenants(context.Context) ([]entity.Tenant, error) {
	return s, nil
}

type stubAttention map[uuid.UUID][]service.OpportunityCard

func (s stubAttention) Attention(ctx context.Context) ([]service.OpportunityCard, error) {
	tenantID, ok := repository.GetTenantID(ctx)
	if !ok {
		return nil, errors.New("no tenant in context")
	}
	if cards, ok := s[tenantID]; ok {
		return cards, nil
	}
	return nil, errors.New("unknown tenant")
}

type stubKeys struct {
	calls int
	err   error
}

func (s *stubKeys) DeleteExpired(context.Context, time.Time) (int64, error) {
	s.calls++
	return 2, s.err
}

func card(title string, health pipeline.Health) service.OpportunityCard {
	return service.OpportunityCard{Opportunity: entity.Opportunity{Title: title}, Health: health}
}

func TestExpireQuotationsRunsAcrossCoworks(t *testing.T) {
	expirer := &stubExpirer{n: 3}
	s := NewScheduler(config.JobsConfig{}, expirer, stubTenants{}, stubAttention{}, &stubKeys{})

	require.NoError(t, s.ExpireQuotations(t.Context()))
	assert.True(t, expirer.skipScope)
}

func TestBuildDigest(t *testing.T) {
	busy := entity.Tenant{ID: uuid.New(), Slug: "nomada"}
	quiet := entity.Tenant{ID: uuid.New(), Slug: "tranquilo"}
	broken := entity.Tenant{ID: uuid.New(), Slug: "roto"}

	attention := stubAttention{
		busy.ID: {
			card("Oficina", pipeline.HealthOverdue),
			card("Sala", pipeline.HealthStale),
			card("Escritorios", pipeline.HealthStale),
		},
		quiet.ID: {},
	}
	s := NewScheduler(config.JobsConfig{}, &stubExpirer{}, stubTenants{busy, quiet, broken}, attention, &stubKeys{})

	entries, err := s.BuildDigest(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, busy.ID, entries[0].TenantID)
	assert.Equal(t, "nomada", entries[0].Slug)
	assert.Equal(t, 1, entries[0].Overdue)
	assert.Equal(t, 2, entries[0].Stale)
	assert.Len(t, entries[0].Attention, 3)

	require.NoError(t, s.AttentionDigest(t.Context()))
}

func TestCleanupIdempotencyKeys(t *testing.T) {
	keys := &stubKeys{}
	s := NewScheduler(config.JobsConfig{}, &stubExpirer{}, stubTenants{}, stubAttention{}, keys)

	require.NoError(t, s.CleanupIdempotencyKeys(t.Context()))
	assert.Equal(t, 1, keys.calls)

	keys.err = errors.New("db down")
	assert.ErrorContains(t, s.CleanupIdempotencyKeys(t.Context()), "db down")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(config.JobsConfig{ExpirySchedule: "every now and then"}, &stubExpirer{}, stubTenants{}, stubAttention{}, &stubKeys{})
	assert.Error(t, s.Start())

	ok := NewScheduler(config.JobsConfig{}, &stubExpirer{}, stubTenants{}, stubAttention{}, &stubKeys{})
	require.NoError(t, ok.Start())
	ok.Stop(t.Context())
}
