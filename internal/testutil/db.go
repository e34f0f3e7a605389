// Package testutil provides in-memory fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/config"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/infrastructure/database"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database, migrated and seeded
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedDefaultData(db, config.AppConfig{}))
	return db
}

// CreateUser stores a user with the given role
func CreateUser(t *testing.T, db *gorm.DB, email, roleName string) *entity.User {
	t.Helper()

	var role entity.Role
	require.NoError(t, db.Where("name = ?", roleName).First(&role).Error)

	user := &entity.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "x",
		Roles:     []entity.Role{role},
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTenant stores a cowork owned by owner and returns a context scoped to it
func CreateTenant(t *testing.T, db *gorm.DB, owner *entity.User, slug string) (*entity.Tenant, context.Context) {
	t.Helper()

	tenant := &entity.Tenant{
		Name:     strings.ToUpper(slug[:1]) + slug[1:],
		Slug:     slug,
		OwnerID:  owner.ID,
		Settings: entity.DefaultTenantSettings(),
	}
	repo := repository.NewTenantRepository(db)
	require.NoError(t, repo.CreateWithOwner(context.Background(), tenant))

	return tenant, repository.WithTenant(context.Background(), tenant.ID)
}

// CreateClient stores a client in the tenant carried by ctx
func CreateClient(t *testing.T, db *gorm.DB, tenantID, createdBy uuid.UUID, name string) *entity.Client {
	t.Helper()

	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	client := &entity.Client{TenantID: tenantID, CreatedByID: createdBy, Name: name, Email: &email}
	require.NoError(t, db.Create(client).Error)
	return client
}
