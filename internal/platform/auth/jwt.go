// Package auth issues and verifies the JWT session tokens the HTTP layer trusts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the coarse permission carried in a token.
type Role string

const (
	RoleBreeder Role = "breeder"
	RoleAdmin   Role = "admin"
)

// Claims are the registered claims plus the account identity.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs HS256 tokens with a shared secret.
type JWTManager struct {
	secret        []byte
	sessionTTL    time.Duration
	persistentTTL time.Duration
}

// NewJWTManager creates a manager. sessionTTL applies to ordinary sign-ins,
// persistentTTL to "remember me" sign-ins.
func NewJWTManager(secret string, sessionTTL, persistentTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), sessionTTL: sessionTTL, persistentTTL: persistentTTL}
}

// Generate issues a token for the account. It returns the token and its expiry.
func (m *JWTManager) Generate(userID uuid.UUID, email string, role Role, persistent bool) (string, time.Time, error) {
	ttl := m.sessionTTL
	if persistent {
		ttl = m.persistentTTL
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate parses and verifies a token.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
