package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/obs"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/service"
	"github.com/aussiebroadwan/hospitalauth/pkg/authsdk"
	"github.com/aussiebroadwan/hospitalauth/pkg/httpx"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

func toIdentity(u domain.User) authsdk.Identity {
	return authsdk.Identity{
		ID:                  u.ID,
		DisplayName:         u.DisplayName,
		Email:               u.Email,
		NationalID:          u.NationalID,
		Role:                u.Role.String(),
		OrganizationID:      u.OrganizationID,
		Active:              u.Active,
		LastAuthenticatedAt: u.LastAuthenticatedAt,
	}
}

func tokenResponse(pair domain.TokenPair, u domain.User, perms rbac.PermissionSet) authsdk.TokenResponse {
	id := toIdentity(u)
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		TokenType:    pair.TokenType,
		Identity:     &id,
		Permissions:  perms.Slice(),
	}
}

type LoginHandler struct {
	Login   *service.LoginService
	Metrics *obs.Metrics
}

// ServeHTTP handles the login endpoint
//
//	@Summary		Log in
//	@Description	Exchanges an email or CPF and password for an access and refresh token pair.
//	@Description	Unknown identifiers, wrong passwords and inactive users all fail with INVALID_CREDENTIALS.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError
//	@Failure		401		{object}	authsdk.APIError
//	@Failure		429		{object}	authsdk.APIError
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithMessage(err.Error()).WriteError(w)
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(req.EmailOrCPF)
	}
	if identifier == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WithMessage("identifier and password are required").WriteError(w)
		return
	}

	res, err := h.Login.Login(r.Context(), identifier, req.Password)
	if err != nil {
		h.Metrics.Login(service.FailureReason(err))
		writeError(w, r, err)
		return
	}
	h.Metrics.Login("success")

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(res.Tokens, res.User, res.Permissions))
}

type RefreshHandler struct {
	Refresh *service.RefreshService
	Metrics *obs.Metrics
}

// ServeHTTP handles the refresh endpoint
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a refresh token for a new access and refresh token pair.
//	@Description	The presented refresh token stays valid until it expires.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError
//	@Failure		401		{object}	authsdk.APIError
//	@Failure		429		{object}	authsdk.APIError
//	@Router			/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithMessage(err.Error()).WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		authsdk.ErrInvalidRequest.WithMessage("refreshToken is required").WriteError(w)
		return
	}

	pair, u, err := h.Refresh.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.Metrics.Refresh(apiError(err).Code)
		writeError(w, r, err)
		return
	}
	h.Metrics.Refresh("success")

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair, u, rbac.PermissionsFor(u.Role)))
}

// ValidateHandler reports on the caller's access token. SessionMiddleware
// has already rejected anything invalid.
//
//	@Summary		Validate access token
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.ValidateResponse
//	@Failure		401	{object}	authsdk.APIError
//	@Security		BearerAuth
//	@Router			/auth/validate [get].
func ValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, r, service.ErrMissingToken)
			return
		}

		resp := authsdk.ValidateResponse{
			Valid:   true,
			Subject: p.User.ID,
			Role:    p.User.Role.String(),
		}
		if p.Claims.ExpiresAt != nil {
			resp.ExpiresAt = p.Claims.ExpiresAt.UTC()
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

// MeHandler returns the caller's identity and current permissions.
//
//	@Summary		Current identity
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse
//	@Failure		401	{object}	authsdk.APIError
//	@Security		BearerAuth
//	@Router			/auth/me [get].
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, r, service.ErrMissingToken)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
			Identity:    toIdentity(p.User),
			Permissions: p.Permissions.Slice(),
		})
	}
}

// LogoutHandler acknowledges a logout. Tokens are not tracked server side,
// so the client discarding them is the whole operation.
//
//	@Summary		Log out
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.LogoutResponse
//	@Failure		401	{object}	authsdk.APIError
//	@Security		BearerAuth
//	@Router			/auth/logout [post].
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slogx.FromContext(r.Context()).Info("logout acknowledged")
		httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutResponse{LoggedOut: true})
	}
}

// RolesHandler lists the permission catalog.
//
//	@Summary		List roles
//	@Description	Returns every role and its permissions. Requires admin:full_access or user:read.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	authsdk.RolesResponse
//	@Failure		401	{object}	authsdk.APIError
//	@Failure		403	{object}	authsdk.APIError
//	@Security		BearerAuth
//	@Router			/auth/roles [get].
func RolesHandler() http.HandlerFunc {
	roles := rbac.Roles()
	resp := authsdk.RolesResponse{Roles: make([]authsdk.RoleInfo, len(roles))}
	for i, role := range roles {
		resp.Roles[i] = authsdk.RoleInfo{
			Role:        role.String(),
			Permissions: rbac.PermissionsFor(role).Slice(),
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
