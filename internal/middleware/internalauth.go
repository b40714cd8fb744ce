package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/faithinsite/core/internal/api/write"
	"github.com/faithinsite/core/internal/apierrors"
	"github.com/faithinsite/core/internal/constants"
)

// InternalAuthMiddleware guards the edge facing resolve endpoints with a
// shared secret. The comparison is constant time so the secret cannot be
// probed byte by byte, and a mismatch is always a 401 rather than a 404.
func InternalAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(constants.InternalAuthHeader)

			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				write.ErrorResponse(r.Context(), w,
					apierrors.UnauthorizedErrorMessage("Invalid internal credentials").AsMessage(),
				)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
