package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	access, err := m.GenerateAccessToken(userID, "ana@example.com", []string{"sales"}, []string{"manage-leads"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, []string{"manage-leads"}, claims.Permissions)

	refresh, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)
	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err, "access token must not refresh")

	_, err = m.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token must not authenticate")

	other := NewJWTManager("other", time.Hour, time.Hour)
	_, err = other.ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManagerExpiry(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)
	issued := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	access, err := m.GenerateAccessToken(uuid.New(), "ana@example.com", nil, nil)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ValidateRefreshToken(refresh)
	assert.NoError(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("s3cret!", ""))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "casa-cowork-providencia", Slugify("  Casa Cowork -- Providencia! "))
}

func TestParseUUIDs(t *testing.T) {
	id := uuid.New()
	ids, err := ParseUUIDs([]string{id.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, ids)

	_, err = ParseUUIDs([]string{"nope"})
	assert.Error(t, err)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "ana", UsernameFromEmail("ana@example.com"))
}
