package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/email"
	"github.com/sangkips/cowork-api/pkg/pagination"
	"github.com/sangkips/cowork-api/pkg/utils"
)

// InviteMailer tells a user they were added to a cowork
type InviteMailer interface {
	Enabled() bool
	SendMemberInvite(to string, data email.MemberInviteEmail) error
}

// TenantService handles cowork and membership operations
type TenantService struct {
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
	mailer     InviteMailer
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo repository.TenantRepository, userRepo repository.UserRepository, mailer InviteMailer) *TenantService {
	return &TenantService{tenantRepo: tenantRepo, userRepo: userRepo, mailer: mailer}
}

// CreateTenantInput represents input for creating a tenant
type CreateTenantInput struct {
	Name     string
	Slug     string
	OwnerID  uuid.UUID
	Settings *entity.TenantSettings
}

// CreateTenant creates a cowork and makes the caller its owner
func (s *TenantService) CreateTenant(ctx context.Context, input *CreateTenantInput) (*entity.Tenant, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}

	slug := utils.Slugify(input.Slug)
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return nil, apperror.NewFieldError("slug", "Slug is required")
	}

	exists, err := s.tenantRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewConflictError("Cowork slug already exists")
	}

	settings := entity.DefaultTenantSettings()
	if input.Settings != nil {
		settings = withSettingDefaults(*input.Settings)
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	tenant := &entity.Tenant{
		Name:     name,
		Slug:     slug,
		OwnerID:  input.OwnerID,
		Settings: settings,
		IsActive: true,
	}
	if err := s.tenantRepo.CreateWithOwner(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Cowork")
	}
	return tenant, nil
}

// ResolveTenant finds a cowork by id or slug
func (s *TenantService) ResolveTenant(ctx context.Context, ref string) (*entity.Tenant, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.tenantRepo.GetByID(ctx, id)
	}
	return s.tenantRepo.GetBySlug(ctx, strings.ToLower(ref))
}

// GetMembership returns the membership of a user, nil when not a member
func (s *TenantService) GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (*entity.TenantMembership, error) {
	return s.tenantRepo.GetMembership(ctx, tenantID, userID)
}

// ListTenants returns the caller's coworks, or every cowork for a super admin
func (s *TenantService) ListTenants(ctx context.Context, userID uuid.UUID, all bool, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Tenant], error) {
	var (
		tenants []entity.Tenant
		total   int64
		err     error
	)
	if all {
		tenants, total, err = s.tenantRepo.ListAll(ctx, params)
	} else {
		tenants, total, err = s.tenantRepo.GetUserTenants(ctx, userID, params)
	}
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(tenants, pag), nil
}

// UpdateTenantInput represents input for updating a tenant
type UpdateTenantInput struct {
	ID       uuid.UUID
	Name     *string
	IsActive *bool
	Settings *entity.TenantSettings
}

// UpdateTenant updates a cowork. Settings, when given, replace the stored ones.
func (s *TenantService) UpdateTenant(ctx context.Context, input *UpdateTenantInput) (*entity.Tenant, error) {
	tenant, err := s.GetTenant(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldError("name", "Name is required")
		}
		tenant.Name = name
	}
	if input.IsActive != nil {
		tenant.IsActive = *input.IsActive
	}
	if input.Settings != nil {
		settings := withSettingDefaults(*input.Settings)
		if err := validateSettings(settings); err != nil {
			return nil, err
		}
		tenant.Settings = settings
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// InviteMemberInput represents input for inviting a user to a tenant
type InviteMemberInput struct {
	TenantID  uuid.UUID
	InviterID uuid.UUID
	Email     string
	Role      string
}

// InviteMember adds an existing user to the cowork and emails them
func (s *TenantService) InviteMember(ctx context.Context, input *InviteMemberInput) (*entity.TenantMembership, error) {
	role := input.Role
	if role == "" {
		role = entity.MemberRoleMember
	}
	if !entity.IsValidMemberRole(role) || role == entity.MemberRoleOwner {
		return nil, apperror.NewFieldError("role", "Role must be admin or member")
	}

	tenant, err := s.GetTenant(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	isMember, err := s.tenantRepo.IsMember(ctx, tenant.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperror.NewConflictError("User is already a member of this cowork")
	}

	membership := &entity.TenantMembership{
		TenantID:  tenant.ID,
		UserID:    user.ID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tenantRepo.AddMember(ctx, membership); err != nil {
		return nil, err
	}
	membership.User = *user
	membership.PopulateUserDetails()

	s.sendInvite(ctx, tenant, input.InviterID, user, role)
	return membership, nil
}

func (s *TenantService) sendInvite(ctx context.Context, tenant *entity.Tenant, inviterID uuid.UUID, user *entity.User, role string) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}

	inviterName := tenant.Name
	if inviter, err := s.userRepo.GetByID(ctx, inviterID); err == nil && inviter != nil {
		inviterName = inviter.FullName()
	}

	err := s.mailer.SendMemberInvite(user.Email, email.MemberInviteEmail{
		CoworkName:  tenant.Name,
		InviterName: inviterName,
		Role:        role,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to send member invite", "tenant_id", tenant.ID, "to", user.Email, "error", err)
	}
}

// GetTenantMembers retrieves all members of a tenant
func (s *TenantService) GetTenantMembers(ctx context.Context, tenantID uuid.UUID) ([]entity.TenantMembership, error) {
	members, err := s.tenantRepo.GetMembers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for i := range members {
		members[i].PopulateUserDetails()
	}
	return members, nil
}

// UpdateMemberRole changes a member's role. The owner keeps their role.
func (s *TenantService) UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	if !entity.IsValidMemberRole(role) || role == entity.MemberRoleOwner {
		return apperror.NewFieldError("role", "Role must be admin or member")
	}
	membership, err := s.memberOf(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if membership.Role == entity.MemberRoleOwner {
		return apperror.NewForbiddenError("The owner role cannot be changed")
	}
	return s.tenantRepo.UpdateMemberRole(ctx, tenantID, userID, role)
}

// RemoveMember removes a user from a tenant. The owner cannot be removed.
func (s *TenantService) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error {
	membership, err := s.memberOf(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if membership.Role == entity.MemberRoleOwner {
		return apperror.NewForbiddenError("The owner cannot be removed")
	}
	return s.tenantRepo.RemoveMember(ctx, tenantID, userID)
}

// ListActiveTenants returns every active cowork, used by background jobs
func (s *TenantService) ListActiveTenants(ctx context.Context) ([]entity.Tenant, error) {
	return s.tenantRepo.ListActive(ctx)
}

func (s *TenantService) memberOf(ctx context.Context, tenantID, userID uuid.UUID) (*entity.TenantMembership, error) {
	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperror.NewNotFoundError("Member")
	}
	return membership, nil
}

// withSettingDefaults fills empty settings fields from the defaults. Flags are taken as given.
func withSettingDefaults(settings entity.TenantSettings) entity.TenantSettings {
	defaults := entity.DefaultTenantSettings()
	set := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	settings.Currency = strings.ToUpper(settings.Currency)
	set(&settings.Currency, defaults.Currency)
	set(&settings.Timezone, defaults.Timezone)
	set(&settings.Locale, defaults.Locale)
	set(&settings.DateFormat, defaults.DateFormat)
	set(&settings.TaxLabel, defaults.TaxLabel)
	set(&settings.QuotationPrefix, defaults.QuotationPrefix)
	if settings.QuotationValidityDays <= 0 {
		settings.QuotationValidityDays = defaults.QuotationValidityDays
	}
	return settings
}

func validateSettings(settings entity.TenantSettings) error {
	var errs []apperror.FieldError
	if len(settings.Currency) != 3 {
		errs = append(errs, apperror.FieldError{Field: "settings.currency", Message: "Currency must be a 3 letter ISO code"})
	}
	if settings.Timezone != "" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			errs = append(errs, apperror.FieldError{Field: "settings.timezone", Message: "Unknown timezone"})
		}
	}
	if len(settings.QuotationPrefix) > 20 {
		errs = append(errs, apperror.FieldError{Field: "settings.quotation_prefix", Message: "Prefix cannot exceed 20 characters"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
