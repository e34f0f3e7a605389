package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/authz"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/pagination"
)

// UserService handles platform user management
type UserService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	permissionRepo repository.PermissionRepository,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
	}
}

// ListUsers returns a page of users with their roles
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	params.Validate()

	users, total, err := s.userRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(users, pag), nil
}

// GetUser returns a user by ID with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// UpdateUserRolesInput represents the input for updating user roles
type UpdateUserRolesInput struct {
	Actor   authz.Principal
	UserID  uuid.UUID
	RoleIDs []uint
}

// UpdateUserRoles syncs the roles of a user with RoleIDs. Only a super admin
// may grant or revoke the super admin role.
func (s *UserService) UpdateUserRoles(ctx context.Context, input *UpdateUserRolesInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	desired := make(map[uint]*entity.Role, len(input.RoleIDs))
	for _, roleID := range input.RoleIDs {
		role, err := s.roleRepo.GetByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, apperror.NewFieldError("role_ids", "Unknown role")
		}
		desired[roleID] = role
	}

	current := make(map[uint]bool, len(user.Roles))
	for _, role := range user.Roles {
		current[role.ID] = true
	}

	touchesSuperAdmin := false
	for _, role := range user.Roles {
		if desired[role.ID] == nil && role.Name == authz.RoleSuperAdmin {
			touchesSuperAdmin = true
		}
	}
	for id, role := range desired {
		if !current[id] && role.Name == authz.RoleSuperAdmin {
			touchesSuperAdmin = true
		}
	}
	if touchesSuperAdmin && !input.Actor.IsSuperAdmin() {
		return nil, apperror.NewForbiddenError("Only a super admin can change the super admin role")
	}

	roleIDs := make([]uint, 0, len(desired))
	for id := range desired {
		roleIDs = append(roleIDs, id)
	}
	if err := s.userRepo.SetRoles(ctx, user.ID, roleIDs); err != nil {
		return nil, err
	}

	return s.userRepo.GetWithRoles(ctx, user.ID)
}

// DeleteUser soft deletes a user. Users cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return apperror.NewForbiddenError("You cannot delete your own account")
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

// ListRoles returns all available roles
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}

// ListPermissions returns all available permissions
func (s *UserService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	return s.permissionRepo.List(ctx)
}
