package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/api/transform/user"
	"github.com/faithinsite/core/internal/api/write"
	"github.com/faithinsite/core/internal/manager"
)

// Login authenticates against the tenant serving the addressed host. A
// denial from the login guard carries a Retry-After header so well behaved
// clients back off instead of hammering the gate.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request fiapi.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	result, err := c.Manager.Auth.Login(ctx, requestHost(r), request.Email, request.Password, c.clientIP(r))
	if err != nil {
		var lockout *manager.LockoutError
		if errors.As(err, &lockout) {
			seconds := int(math.Ceil(lockout.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}

		respondError(w, r, err)

		return
	}

	loggedIn, err := user.ToAPI(*result.User)
	if err != nil {
		respondError(w, r, err)

		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, fiapi.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      *loggedIn,
	})
}
