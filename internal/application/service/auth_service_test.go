package service

import (
	"net/url"
	"testing"
	"time"

	"github.com/sangkips/cowork-api/internal/domain/authz"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/sangkips/cowork-api/pkg/email"
	"github.com/sangkips/cowork-api/pkg/oauth"
	"github.com/sangkips/cowork-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resetMailer struct {
	enabled bool
	sent    []email.PasswordResetEmail
}

func (m *resetMailer) Enabled() bool { return m.enabled }

func (m *resetMailer) SendPasswordReset(_ string, data email.PasswordResetEmail) error {
	m.sent = append(m.sent, data)
	return nil
}

func (f *fixture) authService() (*AuthService, *utils.JWTManager) {
	auth, jwtManager, _ := f.authServiceWithMailer()
	return auth, jwtManager
}

func (f *fixture) authServiceWithMailer() (*AuthService, *utils.JWTManager, *resetMailer) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	mailer := &resetMailer{enabled: true}
	auth := NewAuthService(
		repository.NewUserRepository(f.db),
		repository.NewRoleRepository(f.db),
		repository.NewPasswordResetTokenRepository(f.db),
		f.tenantService(),
		jwtManager,
		mailer,
		"http://localhost:3000/reset-password",
	)
	auth.now = fixedClock
	return auth, jwtManager, mailer
}

func TestRegisterCreatesUserAndCowork(t *testing.T) {
	f := newFixture(t)
	auth, jwtManager := f.authService()

	out, err := auth.Register(t.Context(), &RegisterInput{
		FirstName:  "Camila",
		LastName:   "Rojas",
		Email:      " Camila@Example.com ",
		Password:   "secret123",
		CoworkName: "Espacio Norte",
	})
	require.NoError(t, err)

	assert.Equal(t, "camila@example.com", out.User.Email)
	require.NotNil(t, out.User.Username)
	assert.Equal(t, "camila", *out.User.Username)
	assert.Equal(t, []string{authz.RoleUser}, out.User.RoleNames())

	require.NotNil(t, out.Tenant)
	assert.Equal(t, "espacio-norte", out.Tenant.Slug)
	assert.Equal(t, out.User.ID, out.Tenant.OwnerID)

	claims, err := jwtManager.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
	assert.Contains(t, claims.Permissions, authz.ManageQuotations)

	_, err = auth.Register(t.Context(), &RegisterInput{Email: "camila@example.com", Password: "x"})
	assertStatus(t, err, 409)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	auth, _ := f.authService()
	_, err := auth.Register(t.Context(), &RegisterInput{FirstName: "Camila", Email: "camila@example.com", Password: "secret123"})
	require.NoError(t, err)

	out, err := auth.Login(t.Context(), &LoginInput{Email: "CAMILA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.Nil(t, out.Tenant)

	refreshed, err := auth.RefreshToken(t.Context(), out.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, refreshed.User.ID)

	_, err = auth.Login(t.Context(), &LoginInput{Email: "camila@example.com", Password: "wrong"})
	assertStatus(t, err, 401)
	_, err = auth.Login(t.Context(), &LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assertStatus(t, err, 401)
	_, err = auth.RefreshToken(t.Context(), out.AccessToken)
	assertStatus(t, err, 401)
}

func TestLoginWithGoogle(t *testing.T) {
	f := newFixture(t)
	auth, _ := f.authService()

	info := &oauth.GoogleUserInfo{
		ID:            "g-123",
		Email:         "Owner@example.com",
		VerifiedEmail: true,
		GivenName:     "Olga",
		Picture:       "https://example.com/olga.png",
	}

	// links the existing account with the same email
	out, err := auth.LoginWithGoogle(t.Context(), info)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, out.User.ID)
	assert.Equal(t, "google", out.User.Provider)
	require.NotNil(t, out.User.EmailVerifiedAt)

	again, err := auth.LoginWithGoogle(t.Context(), info)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, again.User.ID)

	created, err := auth.LoginWithGoogle(t.Context(), &oauth.GoogleUserInfo{
		ID:            "g-456",
		Email:         "nuevo@example.com",
		VerifiedEmail: true,
		Name:          "Nuevo",
	})
	require.NoError(t, err)
	assert.NotEqual(t, f.owner.ID, created.User.ID)
	assert.Equal(t, "Nuevo", created.User.FirstName)
	assert.Equal(t, []string{authz.RoleUser}, created.User.RoleNames())

	_, err = auth.LoginWithGoogle(t.Context(), &oauth.GoogleUserInfo{ID: "g-789", Email: "x@example.com"})
	assertStatus(t, err, 401)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	auth, _ := f.authService()
	out, err := auth.Register(t.Context(), &RegisterInput{Email: "camila@example.com", Password: "secret123"})
	require.NoError(t, err)

	err = auth.ChangePassword(t.Context(), &ChangePasswordInput{UserID: out.User.ID, CurrentPassword: "nope", NewPassword: "next"})
	assertField(t, err, "current_password")

	require.NoError(t, auth.ChangePassword(t.Context(), &ChangePasswordInput{UserID: out.User.ID, CurrentPassword: "secret123", NewPassword: "next-secret"}))

	_, err = auth.Login(t.Context(), &LoginInput{Email: "camila@example.com", Password: "next-secret"})
	require.NoError(t, err)
}

func TestGetPrincipal(t *testing.T) {
	f := newFixture(t)
	auth, _ := f.authService()

	principal, err := auth.GetPrincipal(t.Context(), f.owner.ID)
	require.NoError(t, err)

	assert.Equal(t, f.owner.ID, principal.UserID)
	assert.False(t, principal.IsSuperAdmin())
	assert.True(t, authz.Can(principal, authz.ManageOpportunities))
}

func resetToken(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	auth, _, mailer := f.authServiceWithMailer()
	_, err := auth.Register(t.Context(), &RegisterInput{FirstName: "Camila", Email: "camila@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, auth.ForgotPassword(t.Context(), "nobody@example.com"))
	assert.Empty(t, mailer.sent)

	require.NoError(t, auth.ForgotPassword(t.Context(), " Camila@Example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Camila", mailer.sent[0].Name)
	token := resetToken(t, mailer.sent[0].ResetURL)

	err = auth.ResetPassword(t.Context(), &ResetPasswordInput{Token: "not-a-token", NewPassword: "nueva1234"})
	assertStatus(t, err, 400)

	require.NoError(t, auth.ResetPassword(t.Context(), &ResetPasswordInput{Token: token, NewPassword: "nueva1234"}))

	_, err = auth.Login(t.Context(), &LoginInput{Email: "camila@example.com", Password: "secret123"})
	assertStatus(t, err, 401)
	_, err = auth.Login(t.Context(), &LoginInput{Email: "camila@example.com", Password: "nueva1234"})
	require.NoError(t, err)

	err = auth.ResetPassword(t.Context(), &ResetPasswordInput{Token: token, NewPassword: "otra12345"})
	assertStatus(t, err, 400)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newFixture(t)
	auth, _, mailer := f.authServiceWithMailer()
	_, err := auth.Register(t.Context(), &RegisterInput{FirstName: "Camila", Email: "camila@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, auth.ForgotPassword(t.Context(), "camila@example.com"))
	token := resetToken(t, mailer.sent[0].ResetURL)

	auth.now = func() time.Time { return fixedNow.Add(passwordResetTTL + time.Minute) }
	err = auth.ResetPassword(t.Context(), &ResetPasswordInput{Token: token, NewPassword: "nueva1234"})
	assertStatus(t, err, 400)
}

func TestForgotPasswordReplacesPreviousToken(t *testing.T) {
	f := newFixture(t)
	auth, _, mailer := f.authServiceWithMailer()
	_, err := auth.Register(t.Context(), &RegisterInput{FirstName: "Camila", Email: "camila@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, auth.ForgotPassword(t.Context(), "camila@example.com"))
	require.NoError(t, auth.ForgotPassword(t.Context(), "camila@example.com"))
	require.Len(t, mailer.sent, 2)

	first := resetToken(t, mailer.sent[0].ResetURL)
	err = auth.ResetPassword(t.Context(), &ResetPasswordInput{Token: first, NewPassword: "nueva1234"})
	assertStatus(t, err, 400)
}
