package httpx

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingBearer   = errors.New("httpx: missing bearer token")
	ErrMalformedBearer = errors.New("httpx: malformed authorization header")
)

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively per RFC 6750.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrMissingBearer
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedBearer
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMalformedBearer
	}
	return token, nil
}

// WriteBearerChallenge sets an RFC 6750 WWW-Authenticate header.
func WriteBearerChallenge(w http.ResponseWriter, errCode, desc string) {
	v := `Bearer realm="hospital"`
	if errCode != "" {
		v += `, error="` + errCode + `"`
	}
	if desc != "" {
		v += `, error_description="` + desc + `"`
	}
	w.Header().Set("WWW-Authenticate", v)
}
