package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
)

const testIssuer = "hospital-auth-test"

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newManagers(t *testing.T, c *clock) map[string]*jwtx.KeyManager {
	t.Helper()

	hs, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm:     jwtx.AlgorithmHS256,
		Issuer:        testIssuer,
		Now:           c.Now,
		AccessSecret:  []byte(strings.Repeat("a", 32)),
		RefreshSecret: []byte(strings.Repeat("r", 32)),
	})
	require.NoError(t, err)

	ed, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    testIssuer,
		Now:       c.Now,
	})
	require.NoError(t, err)

	return map[string]*jwtx.KeyManager{"HS256": hs, "EdDSA": ed}
}

func TestKeyManagerRoundTrip(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	for alg, km := range newManagers(t, c) {
		t.Run(alg, func(t *testing.T) {
			require.Equal(t, alg, km.Algorithm())

			access := jwtx.NewAccessClaims("01USER", "MEDICO", "org-1", testIssuer, 15*time.Minute, c.now)
			tok, err := km.Sign(access)
			require.NoError(t, err)

			got, err := km.Verify(jwtx.KindAccess, tok)
			require.NoError(t, err)
			require.Equal(t, "01USER", got.Subject)
			require.Equal(t, "MEDICO", got.Role)
			require.Equal(t, "org-1", got.OrganizationID)
			require.Equal(t, jwtx.KindAccess, got.Kind)
			require.Equal(t, access.ID, got.ID)

			refresh := jwtx.NewRefreshClaims("01USER", testIssuer, time.Hour, c.now)
			rtok, err := km.Sign(refresh)
			require.NoError(t, err)

			got, err = km.Verify(jwtx.KindRefresh, rtok)
			require.NoError(t, err)
			require.Equal(t, jwtx.KindRefresh, got.Kind)
			require.Empty(t, got.Role)
		})
	}
}

func TestKeyManagerKindMismatch(t *testing.T) {
	c := &clock{now: time.Now()}

	for alg, km := range newManagers(t, c) {
		t.Run(alg, func(t *testing.T) {
			rtok, err := km.Sign(jwtx.NewRefreshClaims("01USER", testIssuer, time.Hour, c.now))
			require.NoError(t, err)
			_, err = km.Verify(jwtx.KindAccess, rtok)
			require.ErrorIs(t, err, jwtx.ErrKindMismatch)

			atok, err := km.Sign(jwtx.NewAccessClaims("01USER", "ADMIN", "", testIssuer, time.Minute, c.now))
			require.NoError(t, err)
			_, err = km.Verify(jwtx.KindRefresh, atok)
			require.ErrorIs(t, err, jwtx.ErrKindMismatch)
		})
	}
}

func TestKeyManagerExpiry(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	for alg, km := range newManagers(t, c) {
		t.Run(alg, func(t *testing.T) {
			issued := c.now
			tok, err := km.Sign(jwtx.NewAccessClaims("01USER", "ADMIN", "", testIssuer, time.Minute, issued))
			require.NoError(t, err)

			c.now = issued.Add(59 * time.Second)
			_, err = km.Verify(jwtx.KindAccess, tok)
			require.NoError(t, err)

			c.now = issued.Add(2 * time.Minute)
			_, err = km.Verify(jwtx.KindAccess, tok)
			require.ErrorIs(t, err, jwtx.ErrExpired)

			c.now = issued
		})
	}
}

func TestKeyManagerRejectsForeignTokens(t *testing.T) {
	c := &clock{now: time.Now()}
	a := newManagers(t, c)["EdDSA"]
	b := newManagers(t, c)["EdDSA"]

	tok, err := a.Sign(jwtx.NewAccessClaims("01USER", "ADMIN", "", testIssuer, time.Minute, c.now))
	require.NoError(t, err)

	_, err = b.Verify(jwtx.KindAccess, tok)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)

	_, err = a.Verify(jwtx.KindAccess, "not.a.jwt")
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	_, err = a.Verify(jwtx.KindAccess, "")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestKeyManagerRejectsWrongIssuer(t *testing.T) {
	c := &clock{now: time.Now()}
	km := newManagers(t, c)["HS256"]

	tok, err := km.Sign(jwtx.NewAccessClaims("01USER", "ADMIN", "", "someone-else", time.Minute, c.now))
	require.NoError(t, err)

	_, err = km.Verify(jwtx.KindAccess, tok)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
}

func TestNewKeyManagerValidation(t *testing.T) {
	secret := []byte(strings.Repeat("s", 32))

	tests := []struct {
		name string
		opts jwtx.KeyManagerOptions
		err  error
	}{
		{
			name: "shared secret",
			opts: jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmHS256, Issuer: testIssuer, AccessSecret: secret, RefreshSecret: secret},
			err:  jwtx.ErrSharedKey,
		},
		{
			name: "short secret",
			opts: jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmHS256, Issuer: testIssuer, AccessSecret: []byte("short"), RefreshSecret: secret},
			err:  jwtx.ErrWeakSecret,
		},
		{
			name: "missing issuer",
			opts: jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmEdDSA},
		},
		{
			name: "unknown algorithm",
			opts: jwtx.KeyManagerOptions{Algorithm: "RS256", Issuer: testIssuer},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := jwtx.NewKeyManager(tt.opts)
			require.Error(t, err)
			require.Nil(t, km)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestKeyManagerEdDSAFromPEM(t *testing.T) {
	accessPEM, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	refreshPEM, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	opts := jwtx.KeyManagerOptions{
		Algorithm:     jwtx.AlgorithmEdDSA,
		Issuer:        testIssuer,
		AccessKeyPEM:  accessPEM,
		RefreshKeyPEM: refreshPEM,
	}
	first, err := jwtx.NewKeyManager(opts)
	require.NoError(t, err)
	second, err := jwtx.NewKeyManager(opts)
	require.NoError(t, err)

	// The same key file survives a restart.
	tok, err := first.Sign(jwtx.NewAccessClaims("01USER", "ADMIN", "", testIssuer, time.Minute, time.Now()))
	require.NoError(t, err)
	_, err = second.Verify(jwtx.KindAccess, tok)
	require.NoError(t, err)

	jwks := first.AccessJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)

	opts.RefreshKeyPEM = accessPEM
	_, err = jwtx.NewKeyManager(opts)
	require.ErrorIs(t, err, jwtx.ErrSharedKey)
}

func TestAccessJWKSEmptyForHS256(t *testing.T) {
	km := newManagers(t, &clock{now: time.Now()})["HS256"]
	require.Empty(t, km.AccessJWKS().Keys)
	require.NotNil(t, km.AccessJWKS().Keys)
}
