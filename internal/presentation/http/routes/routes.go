package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cowork-api/internal/config"
	"github.com/sangkips/cowork-api/internal/domain/authz"
	domainRepo "github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/internal/presentation/http/handler"
	"github.com/sangkips/cowork-api/internal/presentation/http/middleware"
	"github.com/sangkips/cowork-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	Tenant      *handler.TenantHandler
	Client      *handler.ClientHandler
	Lead        *handler.LeadHandler
	Opportunity *handler.OpportunityHandler
	Quotation   *handler.QuotationHandler
	Space       *handler.SpaceHandler
	Dashboard   *handler.DashboardHandler
	User        *handler.UserHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *slog.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	Tenants         middleware.TenantResolver
	RateLimiter     *middleware.TenantRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.RateLimiter != nil {
			body["rate_limiter"] = deps.RateLimiter.Stats()
		}
		c.JSON(200, body)
	})

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.TenantMiddleware(deps.Tenants))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo})

	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	registerTenantRoutes(protected, h, idempotent)

	// everything below works inside the selected cowork
	scoped := protected.Group("")
	scoped.Use(middleware.RequireTenant())

	registerClientRoutes(scoped, h, idempotent)
	registerLeadRoutes(scoped, h, idempotent)
	registerOpportunityRoutes(scoped, h, idempotent)
	registerQuotationRoutes(scoped, h, idempotent)
	registerSpaceRoutes(scoped, h, idempotent)
	registerBookingRoutes(scoped, h, idempotent)

	scoped.GET("/dashboard", middleware.RequirePermission(authz.ViewDashboard), h.Dashboard.GetPipelineSummary)

	registerUserRoutes(protected, h)
}

func registerTenantRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	tenants := protected.Group("/tenants")
	{
		tenants.GET("", h.Tenant.ListTenants)
		tenants.POST("", middleware.RequirePermission(authz.ManageCoworks), idempotent, h.Tenant.CreateTenant)

		current := tenants.Group("/current")
		current.Use(middleware.RequireTenant())
		admin := middleware.RequireCoworkAdmin()
		{
			current.GET("", h.Tenant.GetCurrentTenant)
			current.PUT("", admin, h.Tenant.UpdateTenant)
			current.GET("/settings", h.Tenant.GetSettings)
			current.PUT("/settings", admin, h.Tenant.UpdateSettings)
			current.GET("/members", h.Tenant.ListMembers)
			current.POST("/members", admin, h.Tenant.InviteMember)
			current.PUT("/members/:user_id", admin, h.Tenant.UpdateMemberRole)
			current.DELETE("/members/:user_id", admin, h.Tenant.RemoveMember)
		}
	}
}

func registerClientRoutes(scoped *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	clients := scoped.Group("/clients")
	clients.Use(middleware.RequirePermission(authz.ManageClients))
	{
		clients.GET("", h.Client.List)
		clients.POST("", idempotent, h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
	}
}

func registerLeadRoutes(scoped *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	leads := scoped.Group("/leads")
	leads.Use(middleware.RequirePermission(authz.ManageLeads))
	{
		leads.GET("", h.Lead.List)
		leads.POST("", idempotent, h.Lead.Create)
		leads.POST("/import", h.Lead.Import)
		leads.GET("/import/template", h.Lead.Template)
		leads.GET("/:id", h.Lead.Get)
		leads.PUT("/:id", h.Lead.Update)
		leads.DELETE("/:id", h.Lead.Delete)
		leads.POST("/:id/convert", middleware.RequirePermission(authz.ManageOpportunities), idempotent, h.Lead.Convert)
	}
}

func registerOpportunityRoutes(scoped *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	opportunities := scoped.Group("/opportunities")
	opportunities.Use(middleware.RequirePermission(authz.ManageOpportunities))
	{
		opportunities.GET("", h.Opportunity.List)
		opportunities.POST("", idempotent, h.Opportunity.Create)
		opportunities.GET("/board", h.Opportunity.Board)
		opportunities.GET("/attention", h.Opportunity.Attention)
		opportunities.POST("/bulk-stage", h.Opportunity.BulkChangeStage)
		opportunities.GET("/:id", h.Opportunity.Get)
		opportunities.PUT("/:id", h.Opportunity.Update)
		opportunities.DELETE("/:id", h.Opportunity.Delete)
		opportunities.PATCH("/:id/stage", h.Opportunity.ChangeStage)
	}
}

func registerQuotationRoutes(scoped *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	quotations := scoped.Group("/quotations")
	quotations.Use(middleware.RequirePermission(authz.ManageQuotations))
	{
		quotations.GET("", h.Quotation.List)
		quotations.POST("", idempotent, h.Quotation.Create)
		quotations.POST("/preview", h.Quotation.Preview)
		quotations.GET("/:id", h.Quotation.Get)
		quotations.PUT("/:id", h.Quotation.Update)
		quotations.DELETE("/:id", h.Quotation.Delete)
		quotations.PATCH("/:id/status", h.Quotation.UpdateStatus)
		quotations.POST("/:id/convert", idempotent, h.Quotation.Convert)
	}
}

func registerSpaceRoutes(scoped *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	spaces := scoped.Group("/spaces")
	{
		// staff taking bookings needs to read the spaces
		read := middleware.RequireAnyPermission(authz.ManageSpaces, authz.ManageBookings)
		spaces.GET("", read, h.Space.ListSpaces)
		spaces.GET("/:id", read, h.Space.GetSpace)

		write := middleware.RequirePermission(authz.ManageSpaces)
		spaces.POST("", write, idempotent, h.Space.CreateSpace)
		spaces.PUT("/:id", write, h.Space.UpdateSpace)
		spaces.DELETE("/:id", write, h.Space.DeleteSpace)
	}
}

func registerBookingRoutes(scoped *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	bookings := scoped.Group("/bookings")
	bookings.Use(middleware.RequirePermission(authz.ManageBookings))
	{
		bookings.GET("", h.Space.ListBookings)
		bookings.POST("", idempotent, h.Space.CreateBooking)
		bookings.GET("/:id", h.Space.GetBooking)
		bookings.POST("/:id/cancel", h.Space.CancelBooking)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	manageUsers := middleware.RequirePermission(authz.ManageUsers)

	users := protected.Group("/users")
	users.Use(manageUsers)
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id/roles", h.User.UpdateRoles)
		users.DELETE("/:id", h.User.Delete)
	}

	protected.GET("/roles", manageUsers, h.User.ListRoles)
	protected.GET("/permissions", manageUsers, h.User.ListPermissions)
}
