package middleware

import (
	"net/http"

	"github.com/gharonda/gharonda-backend/pkg/ctxutil"
)

// RequireAdmin rejects requests whose principal is not an admin. The
// moderation service re-checks the role; this just keeps non-admin traffic
// off the admin routes entirely.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := ctxutil.PrincipalFromCtx(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !p.EffectiveRole().IsAdmin() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
