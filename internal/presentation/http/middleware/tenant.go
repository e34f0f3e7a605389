package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	infraRepo "github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/response"
)

// TenantHeader selects the active cowork by id or slug
const TenantHeader = "X-Tenant-ID"

// TenantResolver looks up coworks and memberships for the tenant middleware
type TenantResolver interface {
	ResolveTenant(ctx context.Context, ref string) (*entity.Tenant, error)
	GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (*entity.TenantMembership, error)
}

// ExtractTenantFromHost extracts tenant slug from subdomain
// e.g., "nomada.cowork.app" -> "nomada"
func ExtractTenantFromHost(host string) (string, error) {
	// Remove port if present
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return "", errors.New("invalid subdomain")
	}
	return parts[0], nil
}

// TenantMiddleware resolves the active cowork from the X-Tenant-ID header,
// falling back to the subdomain. Requests without either continue unscoped.
func TenantMiddleware(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := strings.TrimSpace(c.GetHeader(TenantHeader))
		if ref == "" {
			slug, err := ExtractTenantFromHost(c.Request.Host)
			if err != nil {
				c.Next()
				return
			}
			ref = slug
		}

		ctx := c.Request.Context()
		tenant, err := resolver.ResolveTenant(ctx, ref)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if tenant == nil || !tenant.IsActive {
			response.NotFound(c, "Cowork not found")
			c.Abort()
			return
		}

		principal := Principal(c)
		if principal.UserID != uuid.Nil {
			membership, err := resolver.GetMembership(ctx, tenant.ID, principal.UserID)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			switch {
			case membership != nil:
				c.Set("tenant_role", membership.Role)
			case !principal.IsSuperAdmin():
				response.Forbidden(c, "Access denied to this cowork")
				c.Abort()
				return
			}
		}

		c.Set("tenant_id", tenant.ID)
		c.Set("tenant", tenant)
		c.Request = c.Request.WithContext(infraRepo.WithTenant(ctx, tenant.ID))

		c.Next()
	}
}

// RequireTenant ensures a valid tenant context exists
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetTenantID(c) == uuid.Nil {
			response.BadRequest(c, "Select a cowork with the "+TenantHeader+" header")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetTenantID retrieves the tenant ID from gin context
func GetTenantID(c *gin.Context) uuid.UUID {
	tenantID, exists := c.Get("tenant_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := tenantID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// GetTenant retrieves the resolved cowork, nil when none was selected
func GetTenant(c *gin.Context) *entity.Tenant {
	v, ok := c.Get("tenant")
	if !ok {
		return nil
	}
	tenant, _ := v.(*entity.Tenant)
	return tenant
}
