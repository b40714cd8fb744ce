package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/api/write"
	"github.com/faithinsite/core/internal/apierrors"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/utils/ptr"
)

// ResolveTenant answers the edge's hostname lookup. A hostname nobody
// serves resolves to null rather than an error, and infrastructure
// failures degrade to the same null so the edge never blocks on us.
func (c *Controller) ResolveTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hostname := r.URL.Query().Get("hostname")
	if hostname == "" {
		write.ErrorResponse(ctx, w,
			apierrors.ValidationErrorMessage("hostname query parameter is required").AsMessage(),
		)

		return
	}

	tenant, err := c.Manager.Domains.ResolveTenant(ctx, hostname)
	if err != nil {
		if errors.Is(err, manager.ErrInvalidHostname) {
			respondError(w, r, err)

			return
		}

		if !errors.Is(err, manager.ErrHostnameNotAssigned) {
			log.Error(ctx, "Tenant resolution degraded to null", err)
		}

		write.JSONResponse(ctx, w, http.StatusOK, fiapi.TenantResolution{})

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, fiapi.TenantResolution{
		Tenant: ptr.PointTo(tenant.Slug),
	})
}

// ResolveRedirect answers the edge's redirect lookup for one path. "No
// redirect" and a suppressed chain are both null destinations, the reason
// field separates them for diagnostics.
func (c *Controller) ResolveRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	slug := query.Get("tenant")
	path := query.Get("path")

	if slug == "" || path == "" {
		write.ErrorResponse(ctx, w,
			apierrors.ValidationErrorMessage("tenant and path query parameters are required").AsMessage(),
		)

		return
	}

	redirect, err := c.Manager.Redirects.Resolve(ctx, slug, path)
	if err != nil {
		switch {
		case errors.Is(err, manager.ErrInvalidPath):
			respondError(w, r, err)

			return
		case errors.Is(err, manager.ErrRedirectLoop):
			log.Warn(ctx, "Redirect chain suppressed",
				slog.String("reason", fiapi.ReasonLoopDetected), slog.String("path", path),
			)
			write.JSONResponse(ctx, w, http.StatusOK, fiapi.RedirectResolution{
				Reason: ptr.PointTo(fiapi.ReasonLoopDetected),
			})

			return
		case errors.Is(err, manager.ErrRedirectTooDeep):
			log.Warn(ctx, "Redirect chain suppressed",
				slog.String("reason", fiapi.ReasonChainTooDeep), slog.String("path", path),
			)
			write.JSONResponse(ctx, w, http.StatusOK, fiapi.RedirectResolution{
				Reason: ptr.PointTo(fiapi.ReasonChainTooDeep),
			})

			return
		case errors.Is(err, manager.ErrNoRedirect):
		default:
			log.Error(ctx, "Redirect resolution degraded to null", err)
		}

		write.JSONResponse(ctx, w, http.StatusOK, fiapi.RedirectResolution{})

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, fiapi.RedirectResolution{
		Destination: ptr.PointTo(redirect.Destination),
		Status:      ptr.PointTo(redirect.StatusCode),
	})
}
