package handlers

import (
	"net/http"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/api/transform"
	"github.com/faithinsite/core/internal/api/transform/tenant"
	"github.com/faithinsite/core/internal/api/write"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/utils/ptr"
)

func (c *Controller) ListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, ok := parseListParams(w, r)
	if !ok {
		return
	}

	tenants, total, err := c.Manager.Tenants.ListTenants(ctx, params.Skip, params.Top)
	if err != nil {
		respondError(w, r, err)

		return
	}

	values, err := transform.ToList(tenants, tenant.ToAPI)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response := fiapi.TenantList{Value: values}
	if params.Count {
		response.Count = ptr.PointTo(total)
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

func (c *Controller) CreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request fiapi.TenantCreate
	if !decodeJSON(w, r, &request) {
		return
	}

	created := &model.Tenant{
		Slug: request.Slug,
		Name: request.Name,
	}

	err := c.Manager.Tenants.CreateTenant(ctx, created)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := tenant.ToAPI(*created)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, response)
}

func (c *Controller) GetTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := c.Manager.Tenants.GetTenantByID(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := tenant.ToAPI(*found)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

// UpdateTenantStatus moves a tenant between ACTIVE, SUSPENDED and ARCHIVED.
// A tenant that is not ACTIVE stops resolving immediately but keeps its
// data, so a suspension is reversible.
func (c *Controller) UpdateTenantStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request fiapi.TenantStatusUpdate
	if !decodeJSON(w, r, &request) {
		return
	}

	err := c.Manager.Tenants.UpdateTenantStatus(ctx, id, model.TenantStatus(request.Status))
	if err != nil {
		respondError(w, r, err)

		return
	}

	updated, err := c.Manager.Tenants.GetTenantByID(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := tenant.ToAPI(*updated)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

func (c *Controller) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := c.Manager.Tenants.DeleteTenant(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusNoContent, nil)
}
