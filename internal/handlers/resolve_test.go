package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/apierrors"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/sql"
	"github.com/faithinsite/core/internal/testutils"
	"github.com/faithinsite/core/utils/ptr"
)

func startAPIResolve(t *testing.T) (repo.Repo, http.Handler) {
	t.Helper()

	db := testutils.NewTestDB(t, testutils.TestDBConfig{})

	return sql.NewRepository(db), testutils.NewAPIServer(t, db, testutils.TestAPIServerConfig{})
}

func seedDomain(t *testing.T, r repo.Repo, tenantID uuid.UUID, hostname string, status model.DomainStatus) {
	t.Helper()

	domain := &model.CustomDomain{
		ID:                uuid.New(),
		Hostname:          hostname,
		Status:            status,
		VerificationToken: "fi-verify=seeded",
	}
	if status == model.DomainStatusActive {
		domain.VerifiedAt = ptr.PointTo(time.Now().UTC())
	}

	require.NoError(t, r.Create(t.Context(), repo.ForTenant(tenantID), domain))
}

func seedRule(t *testing.T, r repo.Repo, tenantID uuid.UUID, source, dest string, active bool) {
	t.Helper()

	rule := &model.RedirectRule{
		ID:             uuid.New(),
		SourcePath:     source,
		DestinationURL: dest,
		IsActive:       active,
	}

	require.NoError(t, r.Create(t.Context(), repo.ForTenant(tenantID), rule))
}

func TestResolveTenant(t *testing.T) {
	r, sv := startAPIResolve(t)

	grace := seedTenant(t, r, "grace", model.TenantStatusActive)
	stale := seedTenant(t, r, "stale", model.TenantStatusSuspended)

	seedDomain(t, r, grace.ID, "www.grace.org", model.DomainStatusActive)
	seedDomain(t, r, grace.ID, "pending.grace.org", model.DomainStatusPending)
	seedDomain(t, r, stale.ID, "www.stale.example", model.DomainStatusActive)

	tests := []struct {
		name           string
		hostname       string
		expectedTenant *string
	}{
		{
			name:           "Should resolve a platform subdomain",
			hostname:       "grace." + testutils.TestBaseDomain,
			expectedTenant: ptr.PointTo("grace"),
		},
		{
			name:           "Should resolve an active custom domain",
			hostname:       "www.grace.org",
			expectedTenant: ptr.PointTo("grace"),
		},
		{
			name:           "Should resolve case insensitively",
			hostname:       "WWW.Grace.ORG",
			expectedTenant: ptr.PointTo("grace"),
		},
		{
			name:     "Should answer null for a pending domain",
			hostname: "pending.grace.org",
		},
		{
			name:     "Should answer null for a hostname nobody serves",
			hostname: "nobody.example",
		},
		{
			name:     "Should answer null for a suspended tenant's domain",
			hostname: "www.stale.example",
		},
		{
			name:     "Should answer null for a suspended tenant's subdomain",
			hostname: "stale." + testutils.TestBaseDomain,
		},
		{
			name:     "Should answer null for a nested subdomain",
			hostname: "deep.grace." + testutils.TestBaseDomain,
		},
		{
			name:     "Should answer null for the bare base domain",
			hostname: testutils.TestBaseDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
				Method:   http.MethodGet,
				Endpoint: "/internal/v1/resolve/tenant?hostname=" + url.QueryEscape(tt.hostname),
				Internal: true,
			})

			assert.Equal(t, http.StatusOK, w.Code)

			response := testutils.GetJSONBody[fiapi.TenantResolution](t, w)
			assert.Equal(t, tt.expectedTenant, response.Tenant)
		})
	}

	t.Run("Should 400 without a hostname", func(t *testing.T) {
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodGet,
			Endpoint: "/internal/v1/resolve/tenant",
			Internal: true,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
		assert.Equal(t, apierrors.ValidationErr, response.Error.Code)
	})

	t.Run("Should 400 on an oversized hostname", func(t *testing.T) {
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodGet,
			Endpoint: "/internal/v1/resolve/tenant?hostname=" + strings.Repeat("a", 260),
			Internal: true,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
		assert.Equal(t, apierrors.InvalidHostname, response.Error.Code)
	})

	t.Run("Should 401 without the internal secret", func(t *testing.T) {
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodGet,
			Endpoint: "/internal/v1/resolve/tenant?hostname=www.grace.org",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
		assert.Equal(t, apierrors.UnauthorizedErr, response.Error.Code)
	})

	t.Run("Should 401 on a wrong internal secret", func(t *testing.T) {
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodGet,
			Endpoint: "/internal/v1/resolve/tenant?hostname=www.grace.org",
			Headers:  map[string]string{constants.InternalAuthHeader: "not-the-secret"},
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestResolveRedirect(t *testing.T) {
	r, sv := startAPIResolve(t)

	grace := seedTenant(t, r, "grace", model.TenantStatusActive)
	stale := seedTenant(t, r, "stale", model.TenantStatusSuspended)

	seedRule(t, r, grace.ID, "/old", "/new", true)
	seedRule(t, r, grace.ID, "/events", "https://calendar.grace.org/public", true)
	seedRule(t, r, grace.ID, "/dormant", "/elsewhere", false)
	seedRule(t, r, stale.ID, "/old", "/new", true)

	// A two rule cycle.
	seedRule(t, r, grace.ID, "/loop-a", "/loop-b", true)
	seedRule(t, r, grace.ID, "/loop-b", "/loop-a", true)

	// Six chained rules, one past the hop limit.
	for _, hop := range []struct{ from, to string }{
		{"/c1", "/c2"}, {"/c2", "/c3"}, {"/c3", "/c4"},
		{"/c4", "/c5"}, {"/c5", "/c6"}, {"/c6", "/c7"},
	} {
		seedRule(t, r, grace.ID, hop.from, hop.to, true)
	}

	// Five chained rules ending at an unruled path, right at the limit.
	for _, hop := range []struct{ from, to string }{
		{"/d1", "/d2"}, {"/d2", "/d3"}, {"/d3", "/d4"},
		{"/d4", "/d5"}, {"/d5", "/d6"},
	} {
		seedRule(t, r, grace.ID, hop.from, hop.to, true)
	}

	tests := []struct {
		name                string
		tenant              string
		path                string
		expectedDestination *string
		expectedReason      *string
	}{
		{
			name:                "Should resolve an active rule",
			tenant:              "grace",
			path:                "/old",
			expectedDestination: ptr.PointTo("/new"),
		},
		{
			name:                "Should normalize a trailing slash",
			tenant:              "grace",
			path:                "/old/",
			expectedDestination: ptr.PointTo("/new"),
		},
		{
			name:                "Should resolve an external destination",
			tenant:              "grace",
			path:                "/events",
			expectedDestination: ptr.PointTo("https://calendar.grace.org/public"),
		},
		{
			name:   "Should answer null when no rule matches",
			tenant: "grace",
			path:   "/nothing-here",
		},
		{
			name:   "Should answer null for an inactive rule",
			tenant: "grace",
			path:   "/dormant",
		},
		{
			name:           "Should suppress a redirect cycle",
			tenant:         "grace",
			path:           "/loop-a",
			expectedReason: ptr.PointTo(fiapi.ReasonLoopDetected),
		},
		{
			name:           "Should suppress a chain past the hop limit",
			tenant:         "grace",
			path:           "/c1",
			expectedReason: ptr.PointTo(fiapi.ReasonChainTooDeep),
		},
		{
			name:                "Should allow a chain at the hop limit",
			tenant:              "grace",
			path:                "/d1",
			expectedDestination: ptr.PointTo("/d2"),
		},
		{
			name:   "Should answer null for an unknown tenant",
			tenant: "nobody",
			path:   "/old",
		},
		{
			name:   "Should answer null for a suspended tenant",
			tenant: "stale",
			path:   "/old",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
				Method: http.MethodGet,
				Endpoint: "/internal/v1/resolve/redirect?tenant=" + url.QueryEscape(tt.tenant) +
					"&path=" + url.QueryEscape(tt.path),
				Internal: true,
			})

			assert.Equal(t, http.StatusOK, w.Code)

			response := testutils.GetJSONBody[fiapi.RedirectResolution](t, w)
			assert.Equal(t, tt.expectedDestination, response.Destination)
			assert.Equal(t, tt.expectedReason, response.Reason)

			if tt.expectedDestination != nil {
				require.NotNil(t, response.Status)
				assert.Equal(t, http.StatusMovedPermanently, *response.Status)
			} else {
				assert.Nil(t, response.Status)
			}
		})
	}

	t.Run("Should 400 without both parameters", func(t *testing.T) {
		for _, endpoint := range []string{
			"/internal/v1/resolve/redirect",
			"/internal/v1/resolve/redirect?tenant=grace",
			"/internal/v1/resolve/redirect?path=/old",
		} {
			w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
				Method:   http.MethodGet,
				Endpoint: endpoint,
				Internal: true,
			})

			assert.Equal(t, http.StatusBadRequest, w.Code)

			response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
			assert.Equal(t, apierrors.ValidationErr, response.Error.Code)
		}
	})

	t.Run("Should 400 on a relative path", func(t *testing.T) {
		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodGet,
			Endpoint: "/internal/v1/resolve/redirect?tenant=grace&path=oops",
			Internal: true,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := testutils.GetJSONBody[fiapi.ErrorMessage](t, w)
		assert.Equal(t, apierrors.InvalidPath, response.Error.Code)
	})
}
