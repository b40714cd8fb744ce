package handlers_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/apierrors"
	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/sql"
	"github.com/faithinsite/core/internal/testutils"
)

func startAPIAuth(t *testing.T, cfg config.Config) (repo.Repo, http.Handler) {
	t.Helper()

	db := testutils.NewTestDB(t, testutils.TestDBConfig{})

	return sql.NewRepository(db), testutils.NewAPIServer(t, db, testutils.TestAPIServerConfig{Config: cfg})
}

func TestLogin(t *testing.T) {
	r, sv := startAPIAuth(t, config.Config{})

	ctx := t.Context()
	tenant := seedTenant(t, r, "grace", model.TenantStatusActive)
	suspended := seedTenant(t, r, "stale", model.TenantStatusSuspended)

	member := testutils.CreateTestUser(ctx, t, r, tenant.ID, "pat@grace.org", "pilgrims-progress", constants.TenantOperatorRole)
	testutils.CreateTestUser(ctx, t, r, suspended.ID, "pat@stale.org", "pilgrims-progress", constants.MemberRole)

	graceHost := "grace." + testutils.TestBaseDomain

	t.Run("Should log in and open an operator session", func(t *testing.T) {
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodPost,
			Endpoint: "/v1/auth/login",
			Host:     graceHost,
			Body: testutils.WithJSON(t, fiapi.LoginRequest{
				Email:    "Pat@Grace.ORG",
				Password: "pilgrims-progress",
			}),
		})

		require.Equal(t, http.StatusOK, w.Code)

		response := testutils.GetJSONBody[fiapi.LoginResponse](t, w)
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, member.ID, response.User.ID)
		assert.Equal(t, "pat@grace.org", response.User.Email)
		assert.True(t, response.ExpiresAt.After(time.Now()))

		// The issued token must open the operator surface.
		domains := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodGet,
			Endpoint: "/v1/domains",
			Token:    response.Token,
		})

		assert.Equal(t, http.StatusOK, domains.Code)
	})

	tests := []struct {
		name     string
		host     string
		email    string
		password string
	}{
		{
			name:     "Should reject a wrong password",
			host:     graceHost,
			email:    "pat@grace.org",
			password: "wrong-password",
		},
		{
			name:     "Should reject an unknown email",
			host:     graceHost,
			email:    "nobody@grace.org",
			password: "pilgrims-progress",
		},
		{
			name:     "Should reject a host no tenant serves",
			host:     "unknown." + testutils.TestBaseDomain,
			email:    "pat@grace.org",
			password: "pilgrims-progress",
		},
		{
			name:     "Should reject a suspended tenant's member",
			host:     "stale." + testutils.TestBaseDomain,
			email:    "pat@stale.org",
			password: "pilgrims-progress",
		},
		{
			name:     "Should reject an empty password",
			host:     graceHost,
			email:    "pat@grace.org",
			password: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
				Method:   http.MethodPost,
				Endpoint: "/v1/auth/login",
				Host:     tt.host,
				Body: testutils.WithJSON(t, fiapi.LoginRequest{
					Email:    tt.email,
					Password: tt.password,
				}),
			})

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
			assert.Equal(t, apierrors.InvalidCredentials, response.Error.Code)
		})
	}

	t.Run("Should 400 on a malformed body", func(t *testing.T) {
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodPost,
			Endpoint: "/v1/auth/login",
			Host:     graceHost,
			Body:     testutils.WithString(t, `{"email":`),
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
		assert.Equal(t, apierrors.JSONDecodeErr, response.Error.Code)
	})
}

func TestLoginLockout(t *testing.T) {
	r, sv := startAPIAuth(t, config.Config{
		LoginGuard: config.LoginGuard{
			MaxFailures:     2,
			IPMultiplier:    4,
			Window:          15 * time.Minute,
			LockoutDuration: 15 * time.Minute,
		},
	})

	ctx := t.Context()
	tenant := seedTenant(t, r, "grace", model.TenantStatusActive)
	testutils.CreateTestUser(ctx, t, r, tenant.ID, "pat@grace.org", "pilgrims-progress", constants.MemberRole)

	graceHost := "grace." + testutils.TestBaseDomain

	attempt := func(t *testing.T, email, password, ip string) *fiapi.ErrorMessage {
		t.Helper()

		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodPost,
			Endpoint: "/v1/auth/login",
			Host:     graceHost,
			Headers:  map[string]string{"X-Forwarded-For": ip},
			Body: testutils.WithJSON(t, fiapi.LoginRequest{
				Email:    email,
				Password: password,
			}),
		})

		if w.Code == http.StatusOK {
			return nil
		}

		response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)

		if w.Code == http.StatusTooManyRequests {
			retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
			require.NoError(t, err)
			assert.Positive(t, retryAfter)
		}

		return &response
	}

	t.Run("Should lock the email after repeated failures", func(t *testing.T) {
		for range 2 {
			response := attempt(t, "pat@grace.org", "wrong-password", "203.0.113.7")
			require.NotNil(t, response)
			assert.Equal(t, apierrors.InvalidCredentials, response.Error.Code)
		}

		// Even the right password bounces while the lockout holds.
		response := attempt(t, "pat@grace.org", "pilgrims-progress", "203.0.113.7")
		require.NotNil(t, response)
		assert.Equal(t, apierrors.LoginLocked, response.Error.Code)
	})

	t.Run("Should not lock a different account", func(t *testing.T) {
		response := attempt(t, "sam@grace.org", "wrong-password", "203.0.113.8")
		require.NotNil(t, response)
		assert.Equal(t, apierrors.InvalidCredentials, response.Error.Code)
	})
}

func TestLoginLockoutByIP(t *testing.T) {
	r, sv := startAPIAuth(t, config.Config{
		LoginGuard: config.LoginGuard{
			MaxFailures:     3,
			IPMultiplier:    1,
			Window:          15 * time.Minute,
			LockoutDuration: 15 * time.Minute,
		},
	})

	ctx := t.Context()
	tenant := seedTenant(t, r, "grace", model.TenantStatusActive)
	testutils.CreateTestUser(ctx, t, r, tenant.ID, "pat@grace.org", "pilgrims-progress", constants.MemberRole)

	graceHost := "grace." + testutils.TestBaseDomain
	sharedIP := "198.51.100.23"

	// Three failures from the same address across distinct accounts trip
	// the address gate even though no single email reached its own limit.
	for _, email := range []string{"a@grace.org", "b@grace.org", "c@grace.org"} {
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodPost,
			Endpoint: "/v1/auth/login",
			Host:     graceHost,
			Headers:  map[string]string{"X-Forwarded-For": sharedIP},
			Body: testutils.WithJSON(t, fiapi.LoginRequest{
				Email:    email,
				Password: "wrong-password",
			}),
		})

		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
		Method:   http.MethodPost,
		Endpoint: "/v1/auth/login",
		Host:     graceHost,
		Headers:  map[string]string{"X-Forwarded-For": sharedIP},
		Body: testutils.WithJSON(t, fiapi.LoginRequest{
			Email:    "pat@grace.org",
			Password: "pilgrims-progress",
		}),
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
	assert.Equal(t, apierrors.LoginLocked, response.Error.Code)

	fresh := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
		Method:   http.MethodPost,
		Endpoint: "/v1/auth/login",
		Host:     graceHost,
		Headers:  map[string]string{"X-Forwarded-For": "198.51.100.99"},
		Body: testutils.WithJSON(t, fiapi.LoginRequest{
			Email:    "pat@grace.org",
			Password: "pilgrims-progress",
		}),
	})

	assert.Equal(t, http.StatusOK, fresh.Code)
}

func TestLoginClientAddress(t *testing.T) {
	r, sv := startAPIAuth(t, config.Config{
		LoginGuard: config.LoginGuard{
			MaxFailures:     3,
			IPMultiplier:    1,
			Window:          15 * time.Minute,
			LockoutDuration: 15 * time.Minute,
		},
	})

	ctx := t.Context()
	tenant := seedTenant(t, r, "grace", model.TenantStatusActive)
	testutils.CreateTestUser(ctx, t, r, tenant.ID, "pat@grace.org", "pilgrims-progress", constants.MemberRole)

	graceHost := "grace." + testutils.TestBaseDomain

	login := func(t *testing.T, email, remoteAddr, forwardedFor string) int {
		t.Helper()

		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:     http.MethodPost,
			Endpoint:   "/v1/auth/login",
			Host:       graceHost,
			RemoteAddr: remoteAddr,
			Headers:    map[string]string{"X-Forwarded-For": forwardedFor},
			Body: testutils.WithJSON(t, fiapi.LoginRequest{
				Email:    email,
				Password: "wrong-password",
			}),
		})

		return w.Code
	}

	lastAttemptIP := func(t *testing.T, email string) string {
		t.Helper()

		var attempts []*model.LoginAttempt

		ck := repo.NewCompositeKey().Where(repo.EmailField, email)

		_, err := r.List(ctx, repo.Platform(), model.LoginAttempt{}, &attempts,
			*repo.NewQuery().
				Where(repo.NewCompositeKeyGroup(ck)).
				Order(repo.OrderField{Field: repo.CreatedField, Direction: repo.Desc}).
				SetLimit(1),
		)
		require.NoError(t, err)
		require.NotEmpty(t, attempts)

		return attempts[0].IPAddress
	}

	t.Run("Should take the last untrusted hop of the forwarded chain", func(t *testing.T) {
		// The first entry is whatever the client claimed before it
		// reached the edge; the edge appended 198.51.100.7.
		code := login(t, "chain@grace.org", testutils.TestProxyAddr, "203.0.113.9, 198.51.100.7")
		require.Equal(t, http.StatusUnauthorized, code)

		assert.Equal(t, "198.51.100.7", lastAttemptIP(t, "chain@grace.org"))
	})

	t.Run("Should key on the socket peer when it is not a trusted proxy", func(t *testing.T) {
		code := login(t, "direct@grace.org", "203.0.113.50:4411", "198.51.100.7")
		require.Equal(t, http.StatusUnauthorized, code)

		assert.Equal(t, "203.0.113.50", lastAttemptIP(t, "direct@grace.org"))
	})

	t.Run("Should fall back to the peer when every hop is trusted", func(t *testing.T) {
		code := login(t, "looped@grace.org", testutils.TestProxyAddr, "127.0.0.1")
		require.Equal(t, http.StatusUnauthorized, code)

		assert.Equal(t, "127.0.0.1", lastAttemptIP(t, "looped@grace.org"))
	})

	t.Run("Should trip the address gate despite a rotating forwarded header", func(t *testing.T) {
		peer := "203.0.113.77:5000"

		for i, email := range []string{"a@grace.org", "b@grace.org", "c@grace.org"} {
			fake := "198.51.100." + strconv.Itoa(10+i)
			code := login(t, email, peer, fake)
			require.Equal(t, http.StatusUnauthorized, code)
		}

		// The fabricated header never changed the counted address, so
		// even the right password from that socket now bounces.
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:     http.MethodPost,
			Endpoint:   "/v1/auth/login",
			Host:       graceHost,
			RemoteAddr: peer,
			Headers:    map[string]string{"X-Forwarded-For": "198.51.100.40"},
			Body: testutils.WithJSON(t, fiapi.LoginRequest{
				Email:    "pat@grace.org",
				Password: "pilgrims-progress",
			}),
		})

		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
		assert.Equal(t, apierrors.LoginLocked, response.Error.Code)
	})
}
