package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/hospitalauth/api/auth" // Swagger docs
	"github.com/aussiebroadwan/hospitalauth/internal/auth/obs"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/service"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/pkg/httpx"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// Limits are the rate limit profiles the router applies.
type Limits struct {
	Strict   httpx.RateLimit
	Moderate httpx.RateLimit
	Lenient  httpx.RateLimit
	Public   httpx.RateLimit
}

// DefaultLimits returns the httpx profiles, including any environment
// overrides.
func DefaultLimits() Limits {
	return Limits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
		Public:   httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys    *jwtx.KeyManager
	store   store.Store
	metrics *obs.Metrics
	logger  *slog.Logger

	Limits         Limits
	LoginService   *service.LoginService
	RefreshService *service.RefreshService
	SessionService *service.SessionService
}

func NewRouter(keys *jwtx.KeyManager, st store.Store, metrics *obs.Metrics, logger *slog.Logger) *Router {
	r := &Router{
		Mux:     http.NewServeMux(),
		keys:    keys,
		store:   st,
		metrics: metrics,
		logger:  logger,
		Limits:  DefaultLimits(),
	}

	// Instrument stays innermost so it sees the pattern ServeMux sets.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.metrics.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerRoles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Hospital Authentication Service API
//	@version		0.1.0
//	@description	Session authentication and role-based permissions for the hospital platform.
//	@description
//	@description				Access and refresh tokens are JWTs signed with separate keys (HS256 or EdDSA).
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// Protect registers handler behind SessionMiddleware and, when perms is
// not empty, a gate requiring any one of perms. Rate limiting is per user.
func (r *Router) Protect(pattern string, handler http.Handler, perms ...string) {
	r.protect(pattern, handler, r.Limits.Lenient, perms...)
}

func (r *Router) protect(pattern string, handler http.Handler, limit httpx.RateLimit, perms ...string) {
	r.Mux.Handle(pattern, httpx.Chain(handler,
		SessionMiddleware(r.SessionService, r.metrics),
		httpx.RateLimitMiddleware(limit, httpx.SubjectOrIP),
		RequireAnyPermission(r.metrics, perms...),
	))
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP (credential guessing)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{Login: r.LoginService, Metrics: r.metrics},
			httpx.RateLimitMiddleware(r.Limits.Strict, httpx.ClientIP),
		),
	)

	// POST /auth/refresh - strict rate limit by IP
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(&RefreshHandler{Refresh: r.RefreshService, Metrics: r.metrics},
			httpx.RateLimitMiddleware(r.Limits.Strict, httpx.ClientIP),
		),
	)

	// Authenticated, no permission required - moderate rate limit by user
	r.protect("GET /auth/validate", ValidateHandler(), r.Limits.Moderate)
	r.protect("GET /auth/me", MeHandler(), r.Limits.Moderate)
	r.protect("POST /auth/logout", LogoutHandler(), r.Limits.Moderate)
}

func (r *Router) registerRoles() {
	r.Protect("GET /auth/roles", RolesHandler(), rbac.PermAdminFullAccess, rbac.PermUserRead)
}

func (r *Router) registerSystem() {
	public := func(h http.Handler) http.Handler {
		return httpx.Chain(h, httpx.RateLimitMiddleware(r.Limits.Public, httpx.ClientIP))
	}

	r.Mux.Handle("GET /livez", public(LivezHandler()))
	r.Mux.Handle("GET /readyz", public(ReadyzHandler(r.store, r.keys)))
	r.Mux.Handle("GET /.well-known/jwks.json", public(JWKSHandler(r.keys)))
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
