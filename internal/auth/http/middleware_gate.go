package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/obs"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/service"
	"github.com/aussiebroadwan/hospitalauth/pkg/httpx"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// RequireAnyPermission lets the request through when the principal holds
// at least one of perms. It must run after SessionMiddleware.
func RequireAnyPermission(m *obs.Metrics, perms ...string) httpx.Middleware {
	required := append([]string(nil), perms...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				// Misrouted: a gate without a session in front of it.
				writeError(w, r, service.ErrMissingToken)
				return
			}

			if err := rbac.Allow(p.Permissions, required); err != nil {
				m.Denied(r.Pattern)
				slogx.FromContext(r.Context()).Warn("permission denied",
					slog.Any("required", required),
				)
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
