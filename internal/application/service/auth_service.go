package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/authz"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/email"
	"github.com/sangkips/cowork-api/pkg/oauth"
	"github.com/sangkips/cowork-api/pkg/utils"
)

const providerGoogle = "google"

const passwordResetTTL = time.Hour

// PasswordResetMailer delivers reset links
type PasswordResetMailer interface {
	Enabled() bool
	SendPasswordReset(to string, data email.PasswordResetEmail) error
}

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo      repository.UserRepository
	roleRepo      repository.RoleRepository
	resetRepo     repository.PasswordResetTokenRepository
	tenantService *TenantService
	jwtManager    *utils.JWTManager
	mailer        PasswordResetMailer
	resetURL      string
	now           Clock
}

// NewAuthService creates a new auth service. resetURL is the frontend page
// that receives the reset token as a query parameter.
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	resetRepo repository.PasswordResetTokenRepository,
	tenantService *TenantService,
	jwtManager *utils.JWTManager,
	mailer PasswordResetMailer,
	resetURL string,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		resetRepo:     resetRepo,
		tenantService: tenantService,
		jwtManager:    jwtManager,
		mailer:        mailer,
		resetURL:      resetURL,
		now:           systemClock,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	Tenant       *entity.Tenant
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user.ID)
}

// RegisterInput represents the registration input. A non-empty CoworkName
// also creates a cowork owned by the new user.
type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	CoworkName string
}

// Register creates a new user account and signs it in
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Username:  s.availableUsername(ctx, utils.UsernameFromEmail(email)),
		Email:     email,
		Password:  hashedPassword,
		Provider:  "local",
	}
	if err := s.createWithDefaultRole(ctx, user); err != nil {
		return nil, err
	}

	var tenant *entity.Tenant
	if name := strings.TrimSpace(input.CoworkName); name != "" {
		tenant, err = s.tenantService.CreateTenant(ctx, &CreateTenantInput{Name: name, OwnerID: user.ID})
		if err != nil {
			return nil, err
		}
	}

	out, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out.Tenant = tenant
	return out, nil
}

// LoginWithGoogle signs in the owner of a verified Google account, linking
// it to an existing user with the same email or creating a new one.
func (s *AuthService) LoginWithGoogle(ctx context.Context, info *oauth.GoogleUserInfo) (*LoginOutput, error) {
	if info == nil || info.Email == "" {
		return nil, apperror.ErrUnauthorized
	}
	if !info.VerifiedEmail {
		return nil, apperror.NewAppError(401, "Google account email is not verified")
	}

	user, err := s.userRepo.GetByProviderID(ctx, providerGoogle, info.ID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		email := strings.ToLower(info.Email)
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}

		if user != nil {
			user.Provider = providerGoogle
			user.ProviderID = &info.ID
			if user.Photo == nil && info.Picture != "" {
				user.Photo = &info.Picture
			}
			if user.EmailVerifiedAt == nil {
				now := time.Now().UTC()
				user.EmailVerifiedAt = &now
			}
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		} else {
			now := time.Now().UTC()
			firstName, lastName := info.GivenName, info.FamilyName
			if firstName == "" {
				firstName = info.Name
			}
			user = &entity.User{
				FirstName:       firstName,
				LastName:        lastName,
				Username:        s.availableUsername(ctx, utils.UsernameFromEmail(email)),
				Email:           email,
				Provider:        providerGoogle,
				ProviderID:      &info.ID,
				Photo:           stringPtr(info.Picture),
				EmailVerifiedAt: &now,
			}
			if err := s.createWithDefaultRole(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	return s.issueTokens(ctx, user.ID)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	return s.issueTokens(ctx, userID)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// GetPrincipal loads the roles and permissions the authorization checks need
func (s *AuthService) GetPrincipal(ctx context.Context, userID uuid.UUID) (authz.Principal, error) {
	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return authz.Principal{}, err
	}
	return authz.Principal{
		UserID:      user.ID,
		Roles:       user.RoleNames(),
		Permissions: user.GetPermissions(),
	}, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}

	// accounts created through Google have no local password yet
	if user.Password != "" && !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewFieldError("current_password", "Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// ForgotPassword emails a reset link when the address belongs to an account.
// Unknown addresses succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, address string) error {
	address = strings.ToLower(strings.TrimSpace(address))
	user, err := s.userRepo.GetByEmail(ctx, address)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)

	if err := s.resetRepo.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.resetRepo.Create(ctx, &entity.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: s.now().Add(passwordResetTTL),
	}); err != nil {
		return err
	}

	if s.mailer == nil || !s.mailer.Enabled() {
		slog.WarnContext(ctx, "password reset requested but email is disabled", "user_id", user.ID)
		return nil
	}
	err = s.mailer.SendPasswordReset(user.Email, email.PasswordResetEmail{
		Name:      user.FirstName,
		ResetURL:  s.resetLink(token),
		ExpiresIn: "60 minutos",
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to send password reset", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPasswordInput represents the reset password input
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResetPassword sets a new password using an emailed token. A token works once.
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	invalid := apperror.NewBadRequestError("Invalid or expired reset token")

	token, err := s.resetRepo.GetByHash(ctx, hashResetToken(input.Token))
	if err != nil {
		return err
	}
	now := s.now()
	if token == nil || !token.Usable(now) {
		return invalid
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return invalid
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.resetRepo.MarkUsed(ctx, token.ID, now); err != nil {
		return err
	}
	return s.resetRepo.DeleteByUser(ctx, user.ID)
}

func (s *AuthService) resetLink(token string) string {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return s.resetURL + "?token=" + token
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// UpdateProfileInput represents the update profile input
type UpdateProfileInput struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Username  string
	Phone     *string
	Photo     *string
}

// UpdateProfile updates the user's profile
func (s *AuthService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	if input.Username != "" && (user.Username == nil || input.Username != *user.Username) {
		existingUser, err := s.userRepo.GetByUsername(ctx, input.Username)
		if err != nil {
			return nil, err
		}
		if existingUser != nil && existingUser.ID != user.ID {
			return nil, apperror.NewConflictError("Username already taken")
		}
		user.Username = &input.Username
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Photo != nil {
		user.Photo = input.Photo
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID) (*LoginOutput, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) createWithDefaultRole(ctx context.Context, user *entity.User) error {
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	defaultRole, err := s.roleRepo.GetByName(ctx, authz.RoleUser)
	if err != nil {
		return err
	}
	if defaultRole != nil {
		return s.userRepo.SetRoles(ctx, user.ID, []uint{defaultRole.ID})
	}
	return nil
}

// availableUsername returns base, or base with a short suffix when taken
func (s *AuthService) availableUsername(ctx context.Context, base string) *string {
	if base == "" {
		return nil
	}
	if existing, err := s.userRepo.GetByUsername(ctx, base); err == nil && existing == nil {
		return &base
	}
	candidate := base + "-" + uuid.New().String()[:6]
	return &candidate
}
