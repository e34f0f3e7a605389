// Package jobs runs the periodic maintenance tasks of the CRM on a cron schedule.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sangkips/cowork-api/internal/application/service"
	"github.com/sangkips/cowork-api/internal/config"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/pipeline"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
)

// QuotationExpirer marks overdue quotations as expired
type QuotationExpirer interface {
	ExpireQuotations(ctx context.Context) (int, error)
}

// TenantLister lists the coworks a job walks over
type TenantLister interface {
	ListActiveTenants(ctx context.Context) ([]entity.Tenant, error)
}

// AttentionFinder returns the opportunities of the cowork in ctx that need attention
type AttentionFinder interface {
	Attention(ctx context.Context) ([]service.OpportunityCard, error)
}

// KeyCleaner removes expired idempotency keys
type KeyCleaner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler wires the jobs into a cron runner
type Scheduler struct {
	cron      *cron.Cron
	cfg       config.JobsConfig
	expirer   QuotationExpirer
	tenants   TenantLister
	attention AttentionFinder
	keys      KeyCleaner
	timeout   time.Duration
}

// NewScheduler creates a scheduler. Nothing runs until Start.
func NewScheduler(cfg config.JobsConfig, expirer QuotationExpirer, tenants TenantLister, attention AttentionFinder, keys KeyCleaner) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		cfg:       cfg,
		expirer:   expirer,
		tenants:   tenants,
		attention: attention,
		keys:      keys,
		timeout:   5 * time.Minute,
	}
}

// Start registers the jobs and starts the runner in the background
func (s *Scheduler) Start() error {
	expiry := s.cfg.ExpirySchedule
	if expiry == "" {
		expiry = "@hourly"
	}
	digest := s.cfg.DigestSchedule
	if digest == "" {
		digest = "0 8 * * *"
	}

	if _, err := s.cron.AddFunc(expiry, s.wrap("expire_quotations", s.ExpireQuotations)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(digest, s.wrap("attention_digest", s.AttentionDigest)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.wrap("cleanup_idempotency_keys", s.CleanupIdempotencyKeys)); err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("background jobs started", "expiry_schedule", expiry, "digest_schedule", digest)
	return nil
}

// Stop waits for running jobs to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) wrap(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			slog.Error("job failed", "job", name, "error", err, "duration", time.Since(start))
			return
		}
		slog.Info("job finished", "job", name, "duration", time.Since(start))
	}
}

// ExpireQuotations expires SENT and VIEWED quotations whose validity has passed
func (s *Scheduler) ExpireQuotations(ctx context.Context) error {
	ctx = repository.WithSkipTenantScope(ctx, true)
	n, err := s.expirer.ExpireQuotations(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.InfoContext(ctx, "quotations expired", "count", n)
	}
	return nil
}

// DigestEntry is one line of the attention digest
type DigestEntry struct {
	TenantID  uuid.UUID
	Slug      string
	Overdue   int
	Stale     int
	Attention []service.OpportunityCard
}

// AttentionDigest logs, per active cowork, the opportunities that need attention
func (s *Scheduler) AttentionDigest(ctx context.Context) error {
	entries, err := s.BuildDigest(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		titles := make([]string, 0, len(e.Attention))
		for _, c := range e.Attention {
			titles = append(titles, c.Title)
		}
		slog.InfoContext(ctx, "attention digest",
			"tenant_id", e.TenantID,
			"tenant", e.Slug,
			"overdue", e.Overdue,
			"stale", e.Stale,
			"opportunities", titles,
		)
	}
	return nil
}

// BuildDigest collects the attention list of every active cowork that has one
func (s *Scheduler) BuildDigest(ctx context.Context) ([]DigestEntry, error) {
	tenants, err := s.tenants.ListActiveTenants(ctx)
	if err != nil {
		return nil, err
	}

	var entries []DigestEntry
	for _, t := range tenants {
		cards, err := s.attention.Attention(repository.WithTenant(ctx, t.ID))
		if err != nil {
			slog.WarnContext(ctx, "attention digest failed for cowork", "tenant_id", t.ID, "error", err)
			continue
		}
		if len(cards) == 0 {
			continue
		}

		entry := DigestEntry{TenantID: t.ID, Slug: t.Slug, Attention: cards}
		for _, c := range cards {
			if c.Health == pipeline.HealthOverdue {
				entry.Overdue++
			} else {
				entry.Stale++
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CleanupIdempotencyKeys drops stored idempotent responses past their expiry
func (s *Scheduler) CleanupIdempotencyKeys(ctx context.Context) error {
	removed, err := s.keys.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "expired idempotency keys removed", "count", removed)
	return nil
}
