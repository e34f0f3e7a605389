package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/authz"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/sangkips/cowork-api/internal/testutil"
	"github.com/sangkips/cowork-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// withUser fakes AuthMiddleware
func withUser(userID uuid.UUID, roles, permissions []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_roles", roles)
		c.Set("user_permissions", permissions)
		c.Next()
	}
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tenant_id": GetTenantID(c)})
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, time.Hour)
	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, "ana@example.com", []string{authz.RoleSales}, []string{authz.ManageLeads})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) {
		p := Principal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "can": authz.Can(p, authz.ManageLeads)})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := serve(r, http.MethodGet, "/me", "", headers)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
				assert.Contains(t, w.Body.String(), `"can":true`)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name   string
		roles  []string
		perms  []string
		status int
	}{
		{"holder", []string{authz.RoleSales}, []string{authz.ManageQuotations}, http.StatusOK},
		{"missing permission", []string{authz.RoleStaff}, []string{authz.ManageSpaces}, http.StatusForbidden},
		{"super admin", []string{authz.RoleSuperAdmin}, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/q", withUser(uuid.New(), tt.roles, tt.perms), RequirePermission(authz.ManageQuotations), ok)
			assert.Equal(t, tt.status, serve(r, http.MethodGet, "/q", "", nil).Code)
		})
	}

	r := gin.New()
	r.GET("/q", RequirePermission(authz.ManageQuotations), ok)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/q", "", nil).Code, "anonymous caller")
}

type stubResolver struct {
	tenants     map[string]*entity.Tenant
	memberships map[uuid.UUID]string
}

func (s *stubResolver) ResolveTenant(_ context.Context, ref string) (*entity.Tenant, error) {
	return s.tenants[ref], nil
}

func (s *stubResolver) GetMembership(_ context.Context, tenantID, userID uuid.UUID) (*entity.TenantMembership, error) {
	role, ok := s.memberships[userID]
	if !ok {
		return nil, nil
	}
	return &entity.TenantMembership{TenantID: tenantID, UserID: userID, Role: role}, nil
}

func TestTenantMiddleware(t *testing.T) {
	nomada := &entity.Tenant{ID: uuid.New(), Slug: "nomada", IsActive: true}
	closed := &entity.Tenant{ID: uuid.New(), Slug: "cerrado", IsActive: false}
	member, stranger, root := uuid.New(), uuid.New(), uuid.New()
	resolver := &stubResolver{
		tenants: map[string]*entity.Tenant{
			"nomada":           nomada,
			nomada.ID.String(): nomada,
			"cerrado":          closed,
		},
		memberships: map[uuid.UUID]string{member: entity.MemberRoleAdmin},
	}

	newRouter := func(userID uuid.UUID, roles []string) *gin.Engine {
		r := gin.New()
		r.GET("/x", withUser(userID, roles, nil), TenantMiddleware(resolver), RequireTenant(), func(c *gin.Context) {
			tenantID, scoped := repository.GetTenantID(c.Request.Context())
			assert.True(t, scoped)
			assert.Equal(t, GetTenantID(c), tenantID)
			assert.NotNil(t, GetTenant(c))
			c.JSON(http.StatusOK, gin.H{"tenant_role": c.GetString("tenant_role"), "admin": authz.CanAdministerCowork(Principal(c))})
		})
		return r
	}

	t.Run("member by slug header", func(t *testing.T) {
		w := serve(newRouter(member, []string{authz.RoleUser}), http.MethodGet, "/x", "", map[string]string{TenantHeader: "nomada"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"tenant_role":"admin"`)
		assert.Contains(t, w.Body.String(), `"admin":true`)
	})

	t.Run("member by id header", func(t *testing.T) {
		w := serve(newRouter(member, []string{authz.RoleUser}), http.MethodGet, "/x", "", map[string]string{TenantHeader: nomada.ID.String()})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("subdomain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Host = "nomada.cowork.app:8080"
		w := httptest.NewRecorder()
		newRouter(member, []string{authz.RoleUser}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non member", func(t *testing.T) {
		w := serve(newRouter(stranger, []string{authz.RoleUser}), http.MethodGet, "/x", "", map[string]string{TenantHeader: "nomada"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("super admin without membership", func(t *testing.T) {
		w := serve(newRouter(root, []string{authz.RoleSuperAdmin}), http.MethodGet, "/x", "", map[string]string{TenantHeader: "nomada"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"tenant_role":""`)
		assert.Contains(t, w.Body.String(), `"admin":true`)
	})

	t.Run("unknown or inactive", func(t *testing.T) {
		r := newRouter(member, []string{authz.RoleUser})
		assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/x", "", map[string]string{TenantHeader: "nadie"}).Code)
		assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/x", "", map[string]string{TenantHeader: "cerrado"}).Code)
	})

	t.Run("no cowork selected", func(t *testing.T) {
		w := serve(newRouter(member, []string{authz.RoleUser}), http.MethodGet, "/x", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExtractTenantFromHost(t *testing.T) {
	slug, err := ExtractTenantFromHost("nomada.cowork.app")
	require.NoError(t, err)
	assert.Equal(t, "nomada", slug)

	_, err = ExtractTenantFromHost("localhost:8080")
	assert.Error(t, err)
}

func TestIdempotency(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ana@example.com", authz.RoleUser)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mw := Idempotency(IdempotencyConfig{Repo: repository.NewIdempotencyRepository(db), Now: func() time.Time { return now }})

	calls := 0
	status := http.StatusCreated
	r := gin.New()
	r.POST("/clients", withUser(user.ID, nil, nil), mw, func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	})

	key := map[string]string{IdempotencyKeyHeader: "k-1"}
	first := serve(r, http.MethodPost, "/clients", `{"name":"Acme"}`, key)
	require.Equal(t, http.StatusCreated, first.Code)

	replay := serve(r, http.MethodPost, "/clients", `{"name":"Acme"}`, key)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, calls)

	mismatch := serve(r, http.MethodPost, "/clients", `{"name":"Other"}`, key)
	assert.Equal(t, http.StatusUnprocessableEntity, mismatch.Code)
	assert.Equal(t, 1, calls)

	serve(r, http.MethodPost, "/clients", `{"name":"Acme"}`, nil)
	assert.Equal(t, 2, calls, "requests without a key always run")

	// failures are not stored
	status = http.StatusUnprocessableEntity
	serve(r, http.MethodPost, "/clients", `{}`, map[string]string{IdempotencyKeyHeader: "k-2"})
	status = http.StatusCreated
	retry := serve(r, http.MethodPost, "/clients", `{}`, map[string]string{IdempotencyKeyHeader: "k-2"})
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.Empty(t, retry.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 4, calls)

	// an expired key runs again and is overwritten
	now = now.Add(IdempotencyKeyTTL + time.Minute)
	again := serve(r, http.MethodPost, "/clients", `{"name":"Acme"}`, key)
	assert.Equal(t, http.StatusCreated, again.Code)
	assert.Empty(t, again.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 5, calls)
}

func TestIdempotencyKeysAreScopedPerCowork(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ana@example.com", authz.RoleUser)
	repo := repository.NewIdempotencyRepository(db)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mw := Idempotency(IdempotencyConfig{Repo: repo, Now: func() time.Time { return now }})

	calls := 0
	r := gin.New()
	r.POST("/clients", withUser(user.ID, nil, nil), func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader(TenantHeader)); err == nil {
			c.Set("tenant_id", id)
		}
		c.Next()
	}, mw, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"tenant": c.GetHeader(TenantHeader), "call": calls})
	})

	north, south := uuid.New(), uuid.New()
	send := func(tenant uuid.UUID) *httptest.ResponseRecorder {
		return serve(r, http.MethodPost, "/clients", `{"name":"Acme"}`, map[string]string{
			IdempotencyKeyHeader: "shared-key",
			TenantHeader:         tenant.String(),
		})
	}

	require.Equal(t, http.StatusCreated, send(north).Code)
	other := send(south)
	require.Equal(t, http.StatusCreated, other.Code)
	assert.Empty(t, other.Header().Get("X-Idempotency-Replayed"))
	assert.Contains(t, other.Body.String(), south.String())
	assert.Equal(t, 2, calls)

	replay := send(north)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.Contains(t, replay.Body.String(), north.String())
	assert.Equal(t, 2, calls)

	removed, err := repo.DeleteExpired(t.Context(), now.Add(IdempotencyKeyTTL+time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)
}

func TestTenantRateLimiter(t *testing.T) {
	rl := NewTenantRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	})
	t.Cleanup(rl.Stop)

	busy, quiet := uuid.New(), uuid.New()
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader(TenantHeader)); err == nil {
			c.Set("tenant_id", id)
		}
		c.Next()
	}, rl.Middleware(), ok)

	hdr := map[string]string{TenantHeader: busy.String()}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "", hdr).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "", hdr).Code)
	limited := serve(r, http.MethodGet, "/x", "", hdr)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "2", limited.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "", map[string]string{TenantHeader: quiet.String()}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "", nil).Code, "no cowork is not limited")
	assert.Equal(t, 2, rl.Stats()["active_tenants"])
}

func TestLoggerMiddlewareSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggerMiddleware(nil))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, http.MethodGet, "/x", "", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	w = serve(r, http.MethodGet, "/x", "", map[string]string{"X-Request-ID": "abc"})
	assert.Equal(t, "abc", w.Body.String())
}
