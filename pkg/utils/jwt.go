package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "cowork-api"

// Token uses carried in the "use" claim. A token is only accepted where its use matches.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims are the claims of an access token. Roles and permissions are
// global; cowork membership is resolved per request.
type JWTClaims struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	Use         string    `json:"use"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	Use string `json:"use"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 session tokens
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *JWTManager) registered(subject uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	issued := m.now()
	return jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(issued),
		NotBefore: jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
	}
}

func (m *JWTManager) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// parse verifies signature, issuer and time claims into claims
func (m *JWTManager) parse(raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

// GenerateAccessToken issues a short-lived token carrying the user's roles and permissions
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, email string, roles, permissions []string) (string, error) {
	return m.sign(&JWTClaims{
		UserID:           userID,
		Email:            email,
		Roles:            roles,
		Permissions:      permissions,
		Use:              TokenUseAccess,
		RegisteredClaims: m.registered(userID, m.accessTTL),
	})
}

// GenerateRefreshToken issues a long-lived token that can only mint new sessions
func (m *JWTManager) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return m.sign(&refreshClaims{
		Use:              TokenUseRefresh,
		RegisteredClaims: m.registered(userID, m.refreshTTL),
	})
}

// ValidateAccessToken returns the claims of a valid access token
func (m *JWTManager) ValidateAccessToken(raw string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	if err := m.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Use != TokenUseAccess || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken returns the user a valid refresh token was issued to
func (m *JWTManager) ValidateRefreshToken(raw string) (uuid.UUID, error) {
	claims := &refreshClaims{}
	if err := m.parse(raw, claims); err != nil {
		return uuid.Nil, err
	}
	if claims.Use != TokenUseRefresh {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
