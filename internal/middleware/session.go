package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/faithinsite/core/internal/api/write"
	"github.com/faithinsite/core/internal/apierrors"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/sessiontoken"
	ficontext "github.com/faithinsite/core/utils/context"
)

// SessionMiddleware authenticates requests with a bearer session token and
// injects the resulting session into the request context. Requests without
// a valid token never reach a handler.
func SessionMiddleware(tokens *sessiontoken.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, found := strings.CutPrefix(r.Header.Get(constants.AuthorizationHeader), constants.BearerPrefix)
			if !found || raw == "" {
				write.ErrorResponse(ctx, w,
					apierrors.UnauthorizedErrorMessage("Missing bearer token").AsMessage(),
				)

				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				log.Debug(ctx, "Rejected session token", log.ErrorAttr(err))
				write.ErrorResponse(ctx, w,
					apierrors.UnauthorizedErrorMessage("Session token is not valid").AsMessage(),
				)

				return
			}

			userID, err := claims.UserID()
			if err != nil {
				write.ErrorResponse(ctx, w,
					apierrors.UnauthorizedErrorMessage("Session token is not valid").AsMessage(),
				)

				return
			}

			tenantID, err := claims.Tenant()
			if err != nil {
				write.ErrorResponse(ctx, w,
					apierrors.UnauthorizedErrorMessage("Session token is not valid").AsMessage(),
				)

				return
			}

			ctx = ficontext.InjectSession(ctx, &ficontext.Session{
				UserID:   userID,
				TenantID: tenantID,
				Email:    claims.Email,
				Role:     constants.Role(claims.Role),
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole guards a route group behind a set of roles. The session must
// already be in the context, so this always runs after SessionMiddleware.
func RequireRole(roles ...constants.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			session, err := ficontext.ExtractSession(ctx)
			if err != nil {
				write.ErrorResponse(ctx, w,
					apierrors.UnauthorizedErrorMessage("No authenticated session for this request").AsMessage(),
				)

				return
			}

			if !slices.Contains(roles, session.Role) {
				write.ErrorResponse(ctx, w,
					apierrors.ForbiddenErrorMessage("Forbidden").AsMessage(),
				)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
