package jwtx

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Kind distinguishes access tokens from refresh tokens. It travels in the
// "typ" claim and each kind is signed with its own key.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) Valid() bool { return k == KindAccess || k == KindRefresh }

// Other returns the opposite kind.
func (k Kind) Other() Kind {
	if k == KindAccess {
		return KindRefresh
	}
	return KindAccess
}

// Claims is the full claim set of a hospital auth token. Access tokens
// carry the role and organization at issue time; refresh tokens carry the
// subject only.
type Claims struct {
	jwt.RegisteredClaims

	Kind           Kind   `json:"typ"`
	Role           string `json:"role,omitempty"`
	OrganizationID string `json:"org,omitempty"`
}

// NewAccessClaims builds access claims valid from now for ttl.
func NewAccessClaims(subject, role, organizationID, issuer string, ttl time.Duration, now time.Time) Claims {
	c := newClaims(KindAccess, subject, issuer, ttl, now)
	c.Role = role
	c.OrganizationID = organizationID
	return c
}

// NewRefreshClaims builds refresh claims valid from now for ttl.
func NewRefreshClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(KindRefresh, subject, issuer, ttl, now)
}

func newClaims(kind Kind, subject, issuer string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Kind: kind,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Validate checks the structural requirements of the claim set. The jwt
// parser calls it after the registered time claims pass.
func (c Claims) Validate() error {
	switch {
	case c.Subject == "":
		return fmt.Errorf("%w: missing sub", ErrInvalidClaim)
	case c.ExpiresAt == nil:
		return fmt.Errorf("%w: missing exp", ErrInvalidClaim)
	case c.IssuedAt == nil:
		return fmt.Errorf("%w: missing iat", ErrInvalidClaim)
	case !c.Kind.Valid():
		return fmt.Errorf("%w: typ %q", ErrInvalidClaim, c.Kind)
	case c.Kind == KindAccess && c.Role == "":
		return fmt.Errorf("%w: access token without role", ErrInvalidClaim)
	}
	return nil
}

// rejectUnknownClaims re-decodes the payload segment and fails on any
// member Claims does not declare.
func rejectUnknownClaims(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrMalformed
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("%w: payload encoding", ErrMalformed)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var c Claims
	if err := dec.Decode(&c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	return nil
}
