package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/citylibrary/library-service/internal/core/domain"
)

// Claims is the signed payload carried by a session token. It is opaque to
// everything except the TokenManager.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies stateless HS256 session tokens. The secret
// and lifetime are fixed at construction; there is no revocation list, so a
// token stays valid until it expires or its user row disappears.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a manager with the given secret and token lifetime.
// The ttl is used as supplied: a non-positive value yields tokens that are
// already expired, which Verify rejects.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token asserting the user's identity and role, valid for the
// configured lifetime.
func (m *TokenManager) Issue(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks signature and expiry. Every failure — malformed structure,
// algorithm mismatch, bad signature, expiry — collapses to
// domain.ErrUnauthenticated so callers cannot tell which check failed.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
