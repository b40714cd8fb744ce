// Package handlers implements the HTTP surface of the core API. Handlers
// decode wire shapes, delegate to the managers and push every failure
// through apierrors, so no handler picks an error status by hand.
package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/api/write"
	"github.com/faithinsite/core/internal/apierrors"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/manager"
)

type Controller struct {
	Manager *manager.Manager

	// trustedProxies are the edge ranges whose forwarded chain is
	// believed when deriving the client address.
	trustedProxies []netip.Prefix
}

func NewController(m *manager.Manager, trustedProxies []netip.Prefix) *Controller {
	return &Controller{Manager: m, trustedProxies: trustedProxies}
}

// respondError maps err onto its API shape and writes it.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error(r.Context(), "Processing Request", err)

	e := apierrors.TransformToAPIError(r.Context(), err)
	write.ErrorResponse(r.Context(), w, *e)
}

// decodeJSON parses the request body into target. The error response is
// already written when ok comes back false.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	err := json.NewDecoder(r.Body).Decode(target)
	if err != nil {
		log.Error(r.Context(), "Receiving Request", err)
		write.ErrorResponse(r.Context(), w, apierrors.JSONDecodeErrorMessage().AsMessage())

		return false
	}

	return true
}

// pathID parses the {id} segment of the route. The error response is
// already written when ok comes back false.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		write.ErrorResponse(r.Context(), w,
			apierrors.ValidationErrorMessage("id must be a valid UUID").AsMessage(),
		)

		return uuid.Nil, false
	}

	return id, true
}

type listParams struct {
	Skip  int
	Top   int
	Count bool
}

// parseListParams reads the paging query parameters, falling back to the
// platform defaults. The error response is already written when ok comes
// back false.
func parseListParams(w http.ResponseWriter, r *http.Request) (listParams, bool) {
	params := listParams{Skip: constants.DefaultSkip, Top: constants.DefaultTop}
	query := r.URL.Query()

	if raw := query.Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			write.ErrorResponse(r.Context(), w,
				apierrors.ValidationErrorMessage("skip must be a non-negative integer").AsMessage(),
			)

			return params, false
		}

		params.Skip = v
	}

	if raw := query.Get("top"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			write.ErrorResponse(r.Context(), w,
				apierrors.ValidationErrorMessage("top must be a positive integer").AsMessage(),
			)

			return params, false
		}

		params.Top = v
	}

	if raw := query.Get("count"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			write.ErrorResponse(r.Context(), w,
				apierrors.ValidationErrorMessage("count must be a boolean").AsMessage(),
			)

			return params, false
		}

		params.Count = v
	}

	return params, true
}

// requestHost is the hostname the client addressed, without the port.
func requestHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		return r.Host
	}

	return host
}

// remoteAddr is the socket peer without the port.
func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// clientIP is the address the login throttle counts against. The socket
// peer decides: only when it is one of the configured edge proxies is the
// forwarded chain consulted, walked from its end past further trusted
// hops to the last address the edge did not write itself. A client
// reaching us directly cannot choose its own address by sending the
// header, the chain it fabricates is ignored.
func (c *Controller) clientIP(r *http.Request) string {
	peer := remoteAddr(r)

	addr, err := netip.ParseAddr(peer)
	if err != nil || !c.trustedProxy(addr) {
		return peer
	}

	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return peer
	}

	hops := strings.Split(fwd, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			// A mangled chain falls back to the socket truth.
			return peer
		}

		if !c.trustedProxy(hop) {
			return hop.String()
		}
	}

	return peer
}

func (c *Controller) trustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()

	for _, prefix := range c.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}
