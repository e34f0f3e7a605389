package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cowork-api/internal/application/jobs"
	"github.com/sangkips/cowork-api/internal/application/service"
	"github.com/sangkips/cowork-api/internal/config"
	"github.com/sangkips/cowork-api/internal/infrastructure/cache"
	"github.com/sangkips/cowork-api/internal/infrastructure/database"
	"github.com/sangkips/cowork-api/internal/infrastructure/event"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/sangkips/cowork-api/internal/presentation/http/handler"
	"github.com/sangkips/cowork-api/internal/presentation/http/middleware"
	"github.com/sangkips/cowork-api/internal/presentation/http/routes"
	"github.com/sangkips/cowork-api/pkg/email"
	"github.com/sangkips/cowork-api/pkg/oauth"
	"github.com/sangkips/cowork-api/pkg/utils"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := database.SeedDefaultData(db, cfg.App); err != nil {
		slog.Warn("failed to seed default data", "error", err)
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	clientRepo := repository.NewClientRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	spaceRepo := repository.NewSpaceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	passwordResetRepo := repository.NewPasswordResetTokenRepository(db)

	// Dashboard cache
	var summaryCache service.Cache = cache.Noop{}
	redisClient, err := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("redis unavailable, dashboard cache disabled", "error", err)
	} else {
		summaryCache = cache.NewJSONCache(redisClient, "dashboard", cfg.Redis.CacheTTL)
	}

	// Domain events
	var publisher event.Publisher = event.NoopPublisher{}
	var amqpConn *event.RabbitMQConnection
	if cfg.AMQP.URL != "" {
		amqpConn, err = event.ConnectRabbitMQ(cfg.AMQP.URL)
		if err != nil {
			slog.Warn("rabbitmq unavailable, events will be dropped", "error", err)
		} else {
			publisher = event.NewAMQPPublisher(amqpConn, cfg.AMQP.Exchange)
		}
	}

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})
	if !emailService.Enabled() {
		slog.Info("SMTP not configured, outgoing mail disabled")
	}

	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Services
	dashboardService := service.NewDashboardService(opportunityRepo, quotationRepo, summaryCache)
	tenantService := service.NewTenantService(tenantRepo, userRepo, emailService)
	authService := service.NewAuthService(
		userRepo, roleRepo, passwordResetRepo, tenantService,
		jwtManager, emailService, cfg.App.PasswordResetURL,
	)
	userService := service.NewUserService(userRepo, roleRepo, permissionRepo)
	clientService := service.NewClientService(clientRepo)
	leadService := service.NewLeadService(leadRepo, opportunityRepo, publisher, dashboardService)
	opportunityService := service.NewOpportunityService(opportunityRepo, clientRepo, leadRepo, publisher, dashboardService)
	quotationService := service.NewQuotationService(
		quotationRepo, clientRepo, opportunityRepo, tenantRepo,
		emailService, publisher, dashboardService, cfg.Quotation,
	)
	spaceService := service.NewSpaceService(spaceRepo, bookingRepo, clientRepo, tenantRepo, publisher)

	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(authService, googleOAuthService),
		Tenant:      handler.NewTenantHandler(tenantService),
		Client:      handler.NewClientHandler(clientService),
		Lead:        handler.NewLeadHandler(leadService),
		Opportunity: handler.NewOpportunityHandler(opportunityService),
		Quotation:   handler.NewQuotationHandler(quotationService),
		Space:       handler.NewSpaceHandler(spaceService),
		Dashboard:   handler.NewDashboardHandler(dashboardService),
		User:        handler.NewUserHandler(userService),
	}

	rateLimiter := middleware.NewTenantRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          logger,
		IdempotencyRepo: idempotencyRepo,
		Tenants:         tenantService,
		RateLimiter:     rateLimiter,
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(cfg.Jobs, quotationService, tenantService, opportunityService, idempotencyRepo)
		if err := scheduler.Start(); err != nil {
			slog.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
	}

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	rateLimiter.Stop()
	if amqpConn != nil {
		_ = amqpConn.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
