package handlers

import (
	"net/http"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/api/transform"
	"github.com/faithinsite/core/internal/api/transform/domain"
	"github.com/faithinsite/core/internal/api/write"
	"github.com/faithinsite/core/utils/ptr"
)

func (c *Controller) ListDomains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, ok := parseListParams(w, r)
	if !ok {
		return
	}

	domains, total, err := c.Manager.Domains.ListDomains(ctx, params.Skip, params.Top)
	if err != nil {
		respondError(w, r, err)

		return
	}

	values, err := transform.ToList(domains, domain.ToAPI)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response := fiapi.DomainList{Value: values}
	if params.Count {
		response.Count = ptr.PointTo(total)
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

// CreateDomain registers a hostname for the session tenant. The response
// carries the TXT record the owner must publish before verification can
// succeed.
func (c *Controller) CreateDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request fiapi.DomainCreate
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := c.Manager.Domains.CreateDomain(ctx, request.Hostname)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := domain.ToAPI(*created)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, response)
}

func (c *Controller) GetDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := c.Manager.Domains.GetDomain(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := domain.ToAPI(*found)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

// VerifyDomain runs the DNS ownership check now and reports the outcome.
// A lookup that fails or misses the token parks the domain in ERROR with
// the cause on LastError, it never errors the request.
func (c *Controller) VerifyDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	verified, err := c.Manager.Domains.VerifyDomain(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := domain.ToAPI(*verified)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

func (c *Controller) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := c.Manager.Domains.DeleteDomain(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusNoContent, nil)
}
