//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hospitalauth/pkg/authsdk"
)

func TestLoginAndSession(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t))
	ctx := t.Context()

	resp, err := client.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, 900, resp.ExpiresIn)
	require.Contains(t, resp.Permissions, "admin:full_access")

	_, err = client.Login(ctx, adminEmail, "wrong-password")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.CodeInvalidCredentials)

	session := client.NewSession(resp.AccessToken, resp.RefreshToken, resp.ExpiresIn)
	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, adminEmail, me.Identity.Email)
	require.Equal(t, "SUPER_ADMIN", me.Identity.Role)

	for range 3 {
		v, err := session.Validate(ctx)
		require.NoError(t, err)
		require.True(t, v.Valid)
	}

	roles, err := client.Roles(ctx, resp.AccessToken)
	require.NoError(t, err)
	require.NotEmpty(t, roles.Roles)

	require.NoError(t, session.Logout(ctx))
}

func TestRefreshRotation(t *testing.T) {
	client := authsdk.NewClient(setupAuthContainer(t))
	ctx := t.Context()

	first, err := client.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	// The same refresh token can be exchanged more than once.
	for range 2 {
		next, err := client.Refresh(ctx, first.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, first.RefreshToken, next.RefreshToken)
	}

	_, err = client.Refresh(ctx, first.AccessToken)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.CodeInvalidRefreshToken)

	_, err = client.Me(ctx, first.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.CodeInvalidToken)

	_, err = client.Me(ctx, "")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.CodeMissingToken)
}
