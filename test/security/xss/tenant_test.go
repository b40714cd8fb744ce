package xss_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/sql"
	"github.com/faithinsite/core/internal/testutils"
)

// Tenant names are the one free text field that comes back out of the API,
// so markup smuggled into them must not survive the round trip.
func TestCreateTenantForXSS(t *testing.T) {
	db := testutils.NewTestDB(t, testutils.TestDBConfig{
		Models: []any{&model.Tenant{}},
	})
	r := sql.NewRepository(db)
	sv := testutils.NewAPIServer(t, db, testutils.TestAPIServerConfig{})

	token := testutils.NewTestSessionToken(
		t, uuid.New(), uuid.New(), "root@fi.test", constants.PlatformAdminRole,
	)

	w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
		Method:   http.MethodPost,
		Endpoint: "/v1/tenants",
		Token:    token,
		Body: testutils.WithJSON(t, fiapi.TenantCreate{
			Slug: "grace",
			Name: "a<SCRIPT></SCRIPT>b",
		}),
	})

	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("Should strip markup from the response", func(t *testing.T) {
		response := testutils.GetJSONBody[fiapi.Tenant](t, w)
		assert.Equal(t, "ab", response.Name)
	})

	t.Run("Should store the name stripped of markup", func(t *testing.T) {
		stored := &model.Tenant{}
		ck := repo.NewCompositeKey().Where(repo.SlugField, "grace")

		_, err := r.First(t.Context(), repo.Platform(), stored,
			*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)),
		)
		require.NoError(t, err)
		assert.Equal(t, "ab", stored.Name)
	})

	t.Run("Should strip markup on the way out for rows written past the API", func(t *testing.T) {
		direct := &model.Tenant{
			ID:     uuid.New(),
			Slug:   "legacy",
			Name:   "c<IMG SRC=x onerror=alert(1)>d",
			Status: model.TenantStatusActive,
		}
		require.NoError(t, r.Create(t.Context(), repo.Platform(), direct))

		w := testutils.MakeHTTPRequest(t, sv, testutils.RequestOptions{
			Method:   http.MethodGet,
			Endpoint: "/v1/tenants/" + direct.ID.String(),
			Token:    token,
		})

		require.Equal(t, http.StatusOK, w.Code)

		response := testutils.GetJSONBody[fiapi.Tenant](t, w)
		assert.Equal(t, "cd", response.Name)
	})
}
