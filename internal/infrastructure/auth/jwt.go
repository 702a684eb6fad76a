// Package auth validates the bearer tokens issued by the identity provider.
// The service never authenticates credentials itself; it only verifies the
// signature and extracts the actor claims.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tiendapos/internal/core/appctx"
)

// Claims are the token claims the service relies on.
type Claims struct {
	jwt.RegisteredClaims

	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// JWTManager validates and issues HS256 tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager creates a token manager with the shared secret.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

// ValidateToken verifies the signature and returns the actor context.
func (m *JWTManager) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" || claims.TenantID == "" || claims.Role == "" {
		return nil, fmt.Errorf("token is missing required claims")
	}

	return &appctx.UserContext{
		UserID:   claims.Subject,
		TenantID: claims.TenantID,
		Role:     claims.Role,
	}, nil
}

// IssueToken signs a token for the given actor. Used by the seed tool and
// development setups; production tokens come from the identity provider.
func (m *JWTManager) IssueToken(userID, tenantID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		TenantID: tenantID,
		Role:     role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
