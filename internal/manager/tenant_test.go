package manager_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/mock"
	"github.com/faithinsite/core/internal/testutils"
)

func SetupTenantManager(t *testing.T) (*manager.TenantManager, repo.Repo) {
	t.Helper()

	r := mock.NewInMemoryRepository()

	return manager.NewTenantManager(r), r
}

func newTenant(slug string) *model.Tenant {
	return &model.Tenant{
		ID:     uuid.New(),
		Slug:   slug,
		Name:   "Test Church",
		Status: model.TenantStatusActive,
	}
}

func TestCreateTenant(t *testing.T) {
	m, _ := SetupTenantManager(t)
	ctx := t.Context()

	t.Run("Should create a tenant with defaults", func(t *testing.T) {
		tenant := &model.Tenant{Slug: "grace-church", Name: "Grace Church"}

		err := m.CreateTenant(ctx, tenant)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, tenant.ID)
		assert.Equal(t, model.TenantStatusActive, tenant.Status)
	})

	t.Run("Should strip markup from the name", func(t *testing.T) {
		tenant := &model.Tenant{Slug: "hope-chapel", Name: "Hope <b>Chapel</b>"}

		err := m.CreateTenant(ctx, tenant)
		require.NoError(t, err)
		assert.Equal(t, "Hope Chapel", tenant.Name)
	})

	t.Run("Should reject a duplicated slug", func(t *testing.T) {
		err := m.CreateTenant(ctx, newTenant("riverside"))
		require.NoError(t, err)

		err = m.CreateTenant(ctx, newTenant("riverside"))
		assert.ErrorIs(t, err, manager.ErrTenantExists)
	})

	t.Run("Should reject a short slug", func(t *testing.T) {
		err := m.CreateTenant(ctx, newTenant("ab"))
		assert.ErrorIs(t, err, manager.ErrSlugLength)
	})

	t.Run("Should reject a slug that is not a DNS label", func(t *testing.T) {
		for _, slug := range []string{"Grace", "grace church", "grace.church", "-grace", "grace-"} {
			err := m.CreateTenant(ctx, newTenant(slug))
			assert.ErrorIs(t, err, manager.ErrInvalidSlug, slug)
		}
	})

	t.Run("Should reject an empty name", func(t *testing.T) {
		tenant := newTenant("nameless")
		tenant.Name = ""

		err := m.CreateTenant(ctx, tenant)
		assert.ErrorIs(t, err, manager.ErrNameCannotBeEmpty)
	})

	t.Run("Should reject an unknown status", func(t *testing.T) {
		tenant := newTenant("misstated")
		tenant.Status = model.TenantStatus("FROZEN")

		err := m.CreateTenant(ctx, tenant)
		assert.ErrorIs(t, err, model.ErrInvalidTenantStatus)
	})
}

func TestGetTenant(t *testing.T) {
	m, _ := SetupTenantManager(t)

	tenant := newTenant("first-church")
	require.NoError(t, m.CreateTenant(t.Context(), tenant))

	t.Run("Should get the session tenant", func(t *testing.T) {
		ctx := testutils.CtxWithTenant(t.Context(), tenant.ID)

		got, err := m.GetTenant(ctx)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, got.ID)
		assert.Equal(t, "first-church", got.Slug)
	})

	t.Run("Should error without a session", func(t *testing.T) {
		_, err := m.GetTenant(t.Context())
		assert.Error(t, err)
	})

	t.Run("Should get a tenant by ID without a session", func(t *testing.T) {
		got, err := m.GetTenantByID(t.Context(), tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, "first-church", got.Slug)
	})

	t.Run("Should report an unknown ID as not found", func(t *testing.T) {
		_, err := m.GetTenantByID(t.Context(), uuid.New())
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})
}

func TestGetTenantBySlug(t *testing.T) {
	m, _ := SetupTenantManager(t)
	ctx := t.Context()

	tenant := newTenant("by-slug")
	require.NoError(t, m.CreateTenant(ctx, tenant))

	t.Run("Should get a tenant by slug", func(t *testing.T) {
		got, err := m.GetTenantBySlug(ctx, "by-slug")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, got.ID)
	})

	t.Run("Should report an unknown slug as not found", func(t *testing.T) {
		_, err := m.GetTenantBySlug(ctx, "nobody")
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})
}

func TestListTenants(t *testing.T) {
	m, _ := SetupTenantManager(t)
	ctx := t.Context()

	for _, slug := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, m.CreateTenant(ctx, newTenant(slug)))
	}

	t.Run("Should list tenants ordered by slug", func(t *testing.T) {
		tenants, count, err := m.ListTenants(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		require.Len(t, tenants, 3)
		assert.Equal(t, "alpha", tenants[0].Slug)
		assert.Equal(t, "bravo", tenants[1].Slug)
		assert.Equal(t, "charlie", tenants[2].Slug)
	})

	t.Run("Should paginate", func(t *testing.T) {
		tenants, count, err := m.ListTenants(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		require.Len(t, tenants, 1)
		assert.Equal(t, "bravo", tenants[0].Slug)
	})
}

func TestUpdateTenantStatus(t *testing.T) {
	m, r := SetupTenantManager(t)
	ctx := t.Context()

	tenant := newTenant("to-suspend")
	require.NoError(t, m.CreateTenant(ctx, tenant))

	t.Run("Should update the status", func(t *testing.T) {
		err := m.UpdateTenantStatus(ctx, tenant.ID, model.TenantStatusSuspended)
		require.NoError(t, err)

		got := &model.Tenant{ID: tenant.ID}
		_, err = r.First(ctx, repo.Platform(), got, *repo.NewQuery())
		require.NoError(t, err)
		assert.Equal(t, model.TenantStatusSuspended, got.Status)
	})

	t.Run("Should reject an unknown status", func(t *testing.T) {
		err := m.UpdateTenantStatus(ctx, tenant.ID, model.TenantStatus("FROZEN"))
		assert.ErrorIs(t, err, model.ErrInvalidTenantStatus)
	})

	t.Run("Should report an unknown tenant as not found", func(t *testing.T) {
		err := m.UpdateTenantStatus(ctx, uuid.New(), model.TenantStatusArchived)
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})
}

func TestDeleteTenant(t *testing.T) {
	m, _ := SetupTenantManager(t)
	ctx := t.Context()

	tenant := newTenant("short-lived")
	require.NoError(t, m.CreateTenant(ctx, tenant))

	t.Run("Should delete a tenant", func(t *testing.T) {
		err := m.DeleteTenant(ctx, tenant.ID)
		require.NoError(t, err)

		_, err = m.GetTenantBySlug(ctx, "short-lived")
		assert.True(t, errors.Is(err, repo.ErrNotFound))
	})

	t.Run("Should report a second delete as not found", func(t *testing.T) {
		err := m.DeleteTenant(ctx, tenant.ID)
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})
}
