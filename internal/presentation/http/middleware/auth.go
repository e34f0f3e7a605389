package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/authz"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/response"
	"github.com/sangkips/cowork-api/pkg/utils"
)

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_roles", claims.Roles)
		c.Set("user_permissions", claims.Permissions)

		c.Next()
	}
}

// Principal assembles the caller from the values set by AuthMiddleware and TenantMiddleware
func Principal(c *gin.Context) authz.Principal {
	var p authz.Principal
	if v, ok := c.Get("user_id"); ok {
		p.UserID, _ = v.(uuid.UUID)
	}
	if v, ok := c.Get("user_roles"); ok {
		p.Roles, _ = v.([]string)
	}
	if v, ok := c.Get("user_permissions"); ok {
		p.Permissions, _ = v.([]string)
	}
	p.TenantRole = c.GetString("tenant_role")
	return p
}

// RequirePermission rejects callers that do not hold the permission
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authz.Can(Principal(c), permission) {
			response.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyPermission rejects callers holding none of the permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authz.CanAny(Principal(c), permissions...) {
			response.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCoworkAdmin lets through owners and admins of the active cowork
func RequireCoworkAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authz.CanAdministerCowork(Principal(c)) {
			response.Forbidden(c, "Only cowork owners and admins can do this")
			c.Abort()
			return
		}
		c.Next()
	}
}
