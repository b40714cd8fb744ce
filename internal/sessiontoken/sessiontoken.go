// Package sessiontoken issues and validates the signed tokens that carry a
// logged in user identity between requests. Tokens are HS256 JWTs signed
// with a platform wide secret and expire after the configured TTL.
package sessiontoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/errs"
)

var (
	ErrSignToken    = errors.New("failed to sign session token")
	ErrInvalidToken = errors.New("session token is not valid")
	ErrTokenExpired = errors.New("session token has expired")
)

// Claims carries the authenticated identity inside a session token. The
// tenant travels with the token so every request can be scoped without a
// database lookup.
type Claims struct {
	TenantID string `json:"tid"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and validates session tokens with a single shared key.
type Service struct {
	signingKey []byte
	ttl        time.Duration
}

func NewService(signingKey []byte, ttl time.Duration) *Service {
	return &Service{signingKey: signingKey, ttl: ttl}
}

// Issue signs a fresh token for the given identity and returns it together
// with its expiry time.
func (s *Service) Issue(
	userID, tenantID uuid.UUID,
	email string,
	role constants.Role,
) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TenantID: tenantID.String(),
		Email:    email,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, errs.Wrap(ErrSignToken, err)
	}

	return signed, expiresAt, nil
}

// Parse verifies the signature and the standard claims of a token and
// returns its claims. Any token not signed with HS256 is rejected before
// the key is even consulted.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}

		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, errs.Wrap(ErrInvalidToken, err)
	}

	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// UserID parses the token subject back into a user ID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, errs.Wrap(ErrInvalidToken, err)
	}

	return id, nil
}

// Tenant parses the tenant claim back into a tenant ID.
func (c *Claims) Tenant() (uuid.UUID, error) {
	id, err := uuid.Parse(c.TenantID)
	if err != nil {
		return uuid.Nil, errs.Wrap(ErrInvalidToken, err)
	}

	return id, nil
}
