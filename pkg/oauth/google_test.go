package oauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 32)
}

func TestAuthURLAndConfiguration(t *testing.T) {
	svc := NewGoogleOAuthService(GoogleOAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
	})
	assert.True(t, svc.IsConfigured())
	assert.Contains(t, svc.GetAuthURL("xyz"), "state=xyz")

	empty := NewGoogleOAuthService(GoogleOAuthConfig{})
	_, err := empty.Authenticate(context.Background(), "code")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)
}
