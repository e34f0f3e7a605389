package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/infrastructure/event"
	infraRepo "github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/sangkips/cowork-api/pkg/apperror"
)

// Cache is the JSON cache used for derived read models
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// SummaryInvalidator drops cached dashboard data of a cowork
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// Clock returns the current time; tests replace it
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// requireTenant extracts the active cowork from ctx
func requireTenant(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return uuid.Nil, apperror.ErrTenantRequired
	}
	return tenantID, nil
}

func tenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	return infraRepo.GetTenantID(ctx)
}

// withTenant scopes ctx to one cowork, used by jobs that walk every tenant
func withTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return infraRepo.WithTenant(ctx, tenantID)
}

// publish sends a domain event. A broker failure never fails the request.
func publish(ctx context.Context, publisher event.Publisher, e event.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			"type", e.Type,
			"tenant_id", e.TenantID,
			"aggregate_id", e.AggregateID,
			"error", err,
		)
	}
}

func invalidate(ctx context.Context, inv SummaryInvalidator, tenantID uuid.UUID) {
	if inv != nil {
		inv.Invalidate(ctx, tenantID)
	}
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
