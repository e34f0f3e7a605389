package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// TenantIDKey is the context key for the active cowork
	TenantIDKey ctxKey = "tenant_id"
	// SkipTenantScopeKey disables tenant filtering (super admin, background jobs)
	SkipTenantScopeKey ctxKey = "skip_tenant_scope"
)

// TenantScope filters tenant-owned rows by the cowork carried in ctx.
// Without a tenant in ctx it matches nothing.
func TenantScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ShouldSkipTenantScope(ctx) {
			return db
		}

		tenantID, ok := GetTenantID(ctx)
		if !ok {
			return db.Where("1 = 0")
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// WithSkipTenantScope adds skip tenant scope flag to context (for super admins)
func WithSkipTenantScope(ctx context.Context, skip bool) context.Context {
	return context.WithValue(ctx, SkipTenantScopeKey, skip)
}

// ShouldSkipTenantScope reports whether ctx bypasses tenant filtering
func ShouldSkipTenantScope(ctx context.Context) bool {
	skip, ok := ctx.Value(SkipTenantScopeKey).(bool)
	return ok && skip
}

// WithTenant adds tenant ID to context
func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok && tenantID != uuid.Nil
}
