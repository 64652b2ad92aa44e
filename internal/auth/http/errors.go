package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/service"
	"github.com/aussiebroadwan/hospitalauth/pkg/authsdk"
	"github.com/aussiebroadwan/hospitalauth/pkg/httpx"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// apiError maps a service error to its response. Anything unrecognised is
// an internal error.
func apiError(err error) *authsdk.APIError {
	switch {
	// Refresh failures wrap the token error; the refresh code wins.
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return authsdk.ErrInvalidRefreshToken
	case errors.Is(err, service.ErrMissingToken):
		return authsdk.ErrMissingToken
	case service.IsTokenError(err):
		return authsdk.ErrInvalidToken
	case errors.Is(err, service.ErrInvalidCredentials):
		return authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrUserInactive):
		return authsdk.ErrUserInactive
	case errors.Is(err, service.ErrUnauthorized):
		return authsdk.ErrUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return authsdk.ErrForbidden
	case errors.Is(err, service.ErrInvalidInput):
		return authsdk.ErrInvalidRequest
	default:
		return authsdk.ErrInternal
	}
}

// writeError writes the response for err. Internal failures are logged
// and never described to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apiError(err)
	if e.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
	}

	switch e.Code {
	case authsdk.CodeMissingToken:
		httpx.WriteBearerChallenge(w, "", "")
	case authsdk.CodeInvalidToken, authsdk.CodeUserInactive, authsdk.CodeUnauthorized:
		httpx.WriteBearerChallenge(w, "invalid_token", e.Message)
	case authsdk.CodeForbidden:
		httpx.WriteBearerChallenge(w, "insufficient_scope", e.Message)
	}
	e.WriteError(w)
}
