package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/obs"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/service"
	"github.com/aussiebroadwan/hospitalauth/pkg/httpx"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

type principalKey struct{}

// ContextWithPrincipal attaches p to ctx.
func ContextWithPrincipal(ctx context.Context, p *service.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal SessionMiddleware resolved.
func PrincipalFromContext(ctx context.Context) (*service.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*service.Principal)
	return p, ok && p != nil
}

// SessionMiddleware authenticates the bearer access token and re-reads the
// user on every request. Failures end the request with 401.
func SessionMiddleware(sessions *service.SessionService, m *obs.Metrics) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := httpx.BearerToken(r)
			if err != nil {
				m.Session("missing_token")
				writeError(w, r, service.ErrMissingToken)
				return
			}

			p, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				m.Session(sessionOutcome(err))
				slogx.FromContext(r.Context()).Info("session rejected", slog.Any("error", err))
				writeError(w, r, err)
				return
			}
			m.Session("ok")

			ctx := ContextWithPrincipal(r.Context(), p)
			ctx = httpx.ContextWithSubject(ctx, p.User.ID)
			ctx = slogx.WithAttrs(ctx,
				slog.String("user_id", p.User.ID),
				slog.String("role", p.User.Role.String()),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionOutcome(err error) string {
	switch {
	case service.IsTokenError(err):
		return "invalid_token"
	case errors.Is(err, service.ErrUserInactive):
		return "user_inactive"
	case errors.Is(err, service.ErrUnauthorized):
		return "lookup_timeout"
	default:
		return "error"
	}
}
