package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/pkg/authsdk"
	"github.com/aussiebroadwan/hospitalauth/pkg/httpx"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
)

const readyTimeout = 2 * time.Second

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse
//	@Router			/livez [get].
func LivezHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{Status: "ok"})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the user store and signing keys.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse
//	@Failure		503	{object}	authsdk.HealthResponse
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store, keys *jwtx.KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"database": "ok", "signer": "ok"}
		status, code := "ok", http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			checks["database"] = "unavailable"
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if keys == nil || keys.Algorithm() == "" {
			checks["signer"] = "no keys loaded"
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{Status: status, Checks: checks})
	}
}

// JWKSHandler publishes the access token verification keys. It is empty
// when tokens are signed with a shared secret.
//
//	@Summary		Get JWKS
//	@Description	Returns the public keys that verify access tokens. Refresh keys are never published.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeyManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.AccessJWKS())
	}
}
