package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/pipeline"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DashboardService builds the pipeline summary of a cowork
type DashboardService struct {
	opportunityRepo repository.OpportunityRepository
	quotationRepo   repository.QuotationRepository
	cache           Cache
	now             Clock
}

// NewDashboardService creates a new dashboard service. cache may be a no-op.
func NewDashboardService(
	opportunityRepo repository.OpportunityRepository,
	quotationRepo repository.QuotationRepository,
	cache Cache,
) *DashboardService {
	return &DashboardService{
		opportunityRepo: opportunityRepo,
		quotationRepo:   quotationRepo,
		cache:           cache,
		now:             systemClock,
	}
}

// StageSummary is the aggregate of one pipeline stage
type StageSummary struct {
	Stage           enum.OpportunityStage `json:"stage"`
	Label           string                `json:"label"`
	Count           int64                 `json:"count"`
	Value           decimal.Decimal       `json:"value"`
	ExpectedRevenue decimal.Decimal       `json:"expected_revenue"`
}

// PipelineSummary represents the dashboard figures
type PipelineSummary struct {
	Stages          []StageSummary                 `json:"stages"`
	OpenCount       int64                          `json:"open_count"`
	OpenValue       decimal.Decimal                `json:"open_value"`
	WeightedValue   decimal.Decimal                `json:"weighted_value"`
	WonValue        decimal.Decimal                `json:"won_value"`
	AttentionCount  int                            `json:"attention_count"`
	OverdueCount    int                            `json:"overdue_count"`
	StaleCount      int                            `json:"stale_count"`
	QuotationCounts map[enum.QuotationStatus]int64 `json:"quotation_counts"`
	GeneratedAt     time.Time                      `json:"generated_at"`
}

// GetPipelineSummary returns the cached summary of the active cowork,
// computing and caching it on a miss.
func (s *DashboardService) GetPipelineSummary(ctx context.Context) (*PipelineSummary, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	key := tenantID.String()
	var cached PipelineSummary
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.WarnContext(ctx, "dashboard cache read failed", "tenant_id", tenantID, "error", err)
	}
	if hit {
		return &cached, nil
	}

	summary, err := s.buildSummary(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, summary); err != nil {
		slog.WarnContext(ctx, "dashboard cache write failed", "tenant_id", tenantID, "error", err)
	}
	return summary, nil
}

// Invalidate drops the cached summary of a cowork
func (s *DashboardService) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cache.Delete(ctx, tenantID.String()); err != nil {
		slog.WarnContext(ctx, "dashboard cache invalidation failed", "tenant_id", tenantID, "error", err)
	}
}

func (s *DashboardService) buildSummary(ctx context.Context) (*PipelineSummary, error) {
	totals, err := s.opportunityRepo.StageTotals(ctx)
	if err != nil {
		return nil, err
	}
	byStage := make(map[enum.OpportunityStage]repository.StageTotal, len(totals))
	for _, t := range totals {
		byStage[t.Stage] = t
	}

	summary := &PipelineSummary{
		OpenValue:     decimal.Zero,
		WeightedValue: decimal.Zero,
		WonValue:      decimal.Zero,
		GeneratedAt:   s.now(),
	}
	for _, stage := range enum.AllOpportunityStages() {
		t, ok := byStage[stage]
		if !ok {
			t = repository.StageTotal{Stage: stage, Value: decimal.Zero, ExpectedRevenue: decimal.Zero}
		}
		summary.Stages = append(summary.Stages, StageSummary{
			Stage:           stage,
			Label:           stage.Label(),
			Count:           t.Count,
			Value:           t.Value,
			ExpectedRevenue: t.ExpectedRevenue,
		})

		switch {
		case stage == enum.StageClosedWon:
			summary.WonValue = t.Value
		case !stage.IsTerminal():
			summary.OpenCount += t.Count
			summary.OpenValue = summary.OpenValue.Add(t.Value)
			summary.WeightedValue = summary.WeightedValue.Add(t.ExpectedRevenue)
		}
	}

	open, err := s.opportunityRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range open {
		switch pipeline.Classify(o.Deal(), summary.GeneratedAt) {
		case pipeline.HealthOverdue:
			summary.OverdueCount++
		case pipeline.HealthStale:
			summary.StaleCount++
		}
	}
	summary.AttentionCount = summary.OverdueCount + summary.StaleCount

	counts, err := s.quotationRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary.QuotationCounts = make(map[enum.QuotationStatus]int64, len(enum.AllQuotationStatuses()))
	for _, status := range enum.AllQuotationStatuses() {
		summary.QuotationCounts[status] = counts[status]
	}

	return summary, nil
}
