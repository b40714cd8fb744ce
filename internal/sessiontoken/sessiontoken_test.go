package sessiontoken_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/sessiontoken"
)

var testSigningKey = []byte("test-signing-key")

func TestService_IssueAndParse(t *testing.T) {
	svc := sessiontoken.NewService(testSigningKey, time.Hour)

	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("Should round trip the identity through a token", func(t *testing.T) {
		token, expiresAt, err := svc.Issue(userID, tenantID, "pastor@example.org", constants.TenantOperatorRole)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

		claims, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "pastor@example.org", claims.Email)
		assert.Equal(t, string(constants.TenantOperatorRole), claims.Role)

		gotUser, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, userID, gotUser)

		gotTenant, err := claims.Tenant()
		require.NoError(t, err)
		assert.Equal(t, tenantID, gotTenant)
	})

	t.Run("Should reject a token signed with another key", func(t *testing.T) {
		other := sessiontoken.NewService([]byte("other-key"), time.Hour)

		token, _, err := other.Issue(userID, tenantID, "pastor@example.org", constants.MemberRole)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, sessiontoken.ErrInvalidToken)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		expired := sessiontoken.NewService(testSigningKey, -time.Minute)

		token, _, err := expired.Issue(userID, tenantID, "pastor@example.org", constants.MemberRole)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, sessiontoken.ErrTokenExpired)
	})

	t.Run("Should reject a token with an unexpected signing algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, sessiontoken.Claims{
			Email: "pastor@example.org",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		signed, err := token.SignedString(testSigningKey)
		require.NoError(t, err)

		_, err = svc.Parse(signed)
		assert.ErrorIs(t, err, sessiontoken.ErrInvalidToken)
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := svc.Parse("not-a-token")
		assert.ErrorIs(t, err, sessiontoken.ErrInvalidToken)
	})

	t.Run("Should error on a non uuid subject", func(t *testing.T) {
		claims := &sessiontoken.Claims{
			TenantID: "not-a-uuid",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "neither",
			},
		}

		_, err := claims.UserID()
		assert.ErrorIs(t, err, sessiontoken.ErrInvalidToken)

		_, err = claims.Tenant()
		assert.ErrorIs(t, err, sessiontoken.ErrInvalidToken)
	})
}
