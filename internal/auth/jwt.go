// Package auth holds the token and password primitives the HTTP boundary
// uses to resolve a verified user identity before any core logic runs.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewManager creates a token manager.
func NewManager(secret, issuer string, ttl time.Duration) *Manager {
	if issuer == "" {
		issuer = "pollstream-api"
	}
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Generate signs a token for the given user identity.
func (m *Manager) Generate(userID uuid.UUID, email string, isAdmin bool) (string, error) {
	claims := Claims{
		UserID:  userID.String(),
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies a token string and returns its claims.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if m.issuer != "" && claims.Issuer != m.issuer {
			return nil, jwt.ErrTokenInvalidIssuer
		}
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}
