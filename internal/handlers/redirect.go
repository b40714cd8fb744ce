package handlers

import (
	"net/http"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/api/transform"
	"github.com/faithinsite/core/internal/api/transform/redirect"
	"github.com/faithinsite/core/internal/api/write"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/utils/ptr"
)

func (c *Controller) ListRedirects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, ok := parseListParams(w, r)
	if !ok {
		return
	}

	rules, total, err := c.Manager.Redirects.ListRules(ctx, params.Skip, params.Top)
	if err != nil {
		respondError(w, r, err)

		return
	}

	values, err := transform.ToList(rules, redirect.ToAPI)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response := fiapi.RedirectRuleList{Value: values}
	if params.Count {
		response.Count = ptr.PointTo(total)
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

func (c *Controller) CreateRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request fiapi.RedirectRuleCreate
	if !decodeJSON(w, r, &request) {
		return
	}

	rule := &model.RedirectRule{
		SourcePath:     request.SourcePath,
		DestinationURL: request.DestinationURL,
		IsActive:       request.IsActive == nil || *request.IsActive,
	}

	err := c.Manager.Redirects.CreateRule(ctx, rule)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := redirect.ToAPI(*rule)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, response)
}

func (c *Controller) GetRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rule, err := c.Manager.Redirects.GetRule(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := redirect.ToAPI(*rule)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

// UpdateRedirect applies a partial update. Absent fields keep their stored
// value and the source path can never change.
func (c *Controller) UpdateRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request fiapi.RedirectRuleUpdate
	if !decodeJSON(w, r, &request) {
		return
	}

	rule, err := c.Manager.Redirects.GetRule(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	if request.DestinationURL != nil {
		rule.DestinationURL = *request.DestinationURL
	}

	if request.IsActive != nil {
		rule.IsActive = *request.IsActive
	}

	err = c.Manager.Redirects.UpdateRule(ctx, rule)
	if err != nil {
		respondError(w, r, err)

		return
	}

	// Re-read so the response carries the stored timestamps.
	updated, err := c.Manager.Redirects.GetRule(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	response, err := redirect.ToAPI(*updated)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, response)
}

func (c *Controller) DeleteRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := c.Manager.Redirects.DeleteRule(ctx, id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusNoContent, nil)
}
