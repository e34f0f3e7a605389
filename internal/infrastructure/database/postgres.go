package database

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sangkips/cowork-api/internal/config"
	"github.com/sangkips/cowork-api/internal/domain/authz"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	slog.Info("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		// Accounts
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.Tenant{},
		&entity.TenantMembership{},
		&entity.PasswordResetToken{},

		// CRM
		&entity.Client{},
		&entity.Lead{},
		&entity.Opportunity{},
		&entity.Quotation{},
		&entity.QuotationItem{},

		// Spaces
		&entity.Space{},
		&entity.Booking{},

		// System
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database migrations completed")
	return nil
}

// rolePermissions maps seeded roles to their permissions. super-admin and
// admin receive every permission.
var rolePermissions = map[string][]string{
	authz.RoleSales: {
		authz.ViewDashboard,
		authz.ManageClients,
		authz.ManageLeads,
		authz.ManageOpportunities,
		authz.ManageQuotations,
	},
	authz.RoleStaff: {
		authz.ViewDashboard,
		authz.ManageClients,
		authz.ManageSpaces,
		authz.ManageBookings,
	},
	authz.RoleUser: {
		authz.ViewDashboard,
		authz.ManageClients,
		authz.ManageLeads,
		authz.ManageOpportunities,
		authz.ManageQuotations,
		authz.ManageSpaces,
		authz.ManageBookings,
		authz.ManageCoworks,
	},
}

// SeedDefaultData creates the permissions, roles and the optional super admin account
func SeedDefaultData(db *gorm.DB, app config.AppConfig) error {
	for _, name := range authz.AllPermissions() {
		perm := entity.Permission{Name: name, GuardName: "web"}
		if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", name, err)
		}
	}

	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return err
	}

	byName := make(map[string]entity.Permission, len(allPermissions))
	for _, p := range allPermissions {
		byName[p.Name] = p
	}

	seedRole := func(name string, perms []entity.Permission) error {
		var role entity.Role
		if err := db.Where("name = ?", name).First(&role).Error; err == nil {
			return nil
		}
		role = entity.Role{Name: name, GuardName: "web", Permissions: perms}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
		return nil
	}

	if err := seedRole(authz.RoleSuperAdmin, allPermissions); err != nil {
		return err
	}
	if err := seedRole(authz.RoleAdmin, allPermissions); err != nil {
		return err
	}
	for _, name := range []string{authz.RoleSales, authz.RoleStaff, authz.RoleUser} {
		var perms []entity.Permission
		for _, pn := range rolePermissions[name] {
			if p, ok := byName[pn]; ok {
				perms = append(perms, p)
			}
		}
		if err := seedRole(name, perms); err != nil {
			return err
		}
	}

	if app.AdminEmail == "" || app.AdminPassword == "" {
		return nil
	}
	return seedSuperAdmin(db, app)
}

func seedSuperAdmin(db *gorm.DB, app config.AppConfig) error {
	var existing entity.User
	if err := db.Where("email = ?", app.AdminEmail).First(&existing).Error; err == nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(app.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	var role entity.Role
	if err := db.Where("name = ?", authz.RoleSuperAdmin).First(&role).Error; err != nil {
		return err
	}

	firstName, lastName, _ := strings.Cut(app.AdminName, " ")
	admin := entity.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     app.AdminEmail,
		Password:  string(hashed),
		Roles:     []entity.Role{role},
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create super admin user: %w", err)
	}

	slog.Info("super admin user created", "email", app.AdminEmail)
	return nil
}
