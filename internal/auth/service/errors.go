package service

import (
	"errors"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
)

// Errors returned by the services. Handlers classify them with errors.Is;
// anything not listed here is an internal failure.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user inactive")
	ErrMissingToken        = errors.New("missing token")
	ErrTokenMalformed      = errors.New("token malformed")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenKindMismatch   = errors.New("token kind mismatch")
	ErrForbidden           = rbac.ErrForbidden
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUnauthorized is returned when the user store could not answer in
	// time. Requests fail closed.
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidInput = errors.New("invalid input")
)

// Login failure causes. Always wrapped under ErrInvalidCredentials so the
// caller sees a single error; only the log tells them apart.
var (
	errUnknownIdentifier = errors.New("unknown identifier")
	errBadPassword       = errors.New("bad password")
)

// FailureReason names the cause of a failed login for logs and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserInactive):
		return "inactive"
	case errors.Is(err, errBadPassword):
		return "bad_password"
	case errors.Is(err, errUnknownIdentifier):
		return "unknown_identifier"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrUnauthorized):
		return "timeout"
	default:
		return "internal"
	}
}
