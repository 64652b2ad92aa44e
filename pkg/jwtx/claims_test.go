package jwtx_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
)

func TestNewClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 500, time.UTC)

	a := jwtx.NewAccessClaims("u1", "MEDICO", "org", "iss", 15*time.Minute, now)
	require.Equal(t, jwtx.KindAccess, a.Kind)
	require.Equal(t, now.Truncate(time.Second), a.IssuedAt.Time)
	require.Equal(t, now.Truncate(time.Second).Add(15*time.Minute), a.ExpiresAt.Time)
	require.NotEmpty(t, a.ID)
	require.NoError(t, a.Validate())

	r := jwtx.NewRefreshClaims("u1", "iss", time.Hour, now)
	require.Equal(t, jwtx.KindRefresh, r.Kind)
	require.NotEqual(t, a.ID, r.ID)
	require.NoError(t, r.Validate())
}

func TestClaimsValidate(t *testing.T) {
	now := time.Now()
	valid := jwtx.NewAccessClaims("u1", "MEDICO", "", "iss", time.Minute, now)

	noSub := valid
	noSub.Subject = ""
	noRole := valid
	noRole.Role = ""
	badKind := valid
	badKind.Kind = "id"
	noExp := valid
	noExp.ExpiresAt = nil

	for name, c := range map[string]jwtx.Claims{"sub": noSub, "role": noRole, "typ": badKind, "exp": noExp} {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, c.Validate(), jwtx.ErrInvalidClaim)
		})
	}
}

func TestKindOther(t *testing.T) {
	require.Equal(t, jwtx.KindRefresh, jwtx.KindAccess.Other())
	require.Equal(t, jwtx.KindAccess, jwtx.KindRefresh.Other())
	require.False(t, jwtx.Kind("").Valid())
}

func TestVerifyRejectsUnknownClaims(t *testing.T) {
	secret := []byte(strings.Repeat("k", 32))
	now := time.Now()

	claims := jwt.MapClaims{
		"iss":   testIssuer,
		"sub":   "u1",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Minute).Unix(),
		"typ":   "access",
		"role":  "ADMIN",
		"perms": []string{"admin:full_access"},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	v := jwtx.NewVerifierHS256(secret, jwtx.KindAccess, jwtx.VerifyOptions{Issuer: testIssuer})
	_, err = v.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)

	delete(claims, "perms")
	tok, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	_, err = v.Verify(tok)
	require.NoError(t, err)
}

func TestVerifyRejectsAlgNone(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	body, err := json.Marshal(jwtx.NewAccessClaims("u1", "SUPER_ADMIN", "", testIssuer, time.Minute, time.Now()))
	require.NoError(t, err)
	tok := header + "." + base64.RawURLEncoding.EncodeToString(body) + "."

	v := jwtx.NewVerifierHS256([]byte(strings.Repeat("k", 32)), jwtx.KindAccess, jwtx.VerifyOptions{})
	_, err = v.Verify(tok)
	require.Error(t, err)
}

func TestVerifyLeeway(t *testing.T) {
	secret := []byte(strings.Repeat("k", 32))
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	tok, err := s.Sign(jwtx.NewAccessClaims("u1", "ADMIN", "", testIssuer, time.Minute, issued))
	require.NoError(t, err)

	at := func(d time.Duration) func() time.Time {
		return func() time.Time { return issued.Add(d) }
	}

	strict := jwtx.NewVerifierHS256(secret, jwtx.KindAccess, jwtx.VerifyOptions{Now: at(70 * time.Second)})
	_, err = strict.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	lenient := jwtx.NewVerifierHS256(secret, jwtx.KindAccess, jwtx.VerifyOptions{Now: at(70 * time.Second), Leeway: 30 * time.Second})
	_, err = lenient.Verify(tok)
	require.NoError(t, err)
}
