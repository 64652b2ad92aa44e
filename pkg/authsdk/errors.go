package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/hospitalauth/pkg/httpx"
)

// Error codes written in the "code" member of every error body.
const (
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUserInactive        = "USER_INACTIVE"
	CodeMissingToken        = "MISSING_TOKEN"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
)

// APIError is the {code, message} error body. The server writes it with
// WriteError and the client returns it for any non-2xx response.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes e as a non-cacheable JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// Unauthenticated reports whether the caller must log in again.
func (e *APIError) Unauthenticated() bool { return e.StatusCode == http.StatusUnauthorized }

// WithMessage returns a copy of e with a different message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

// Canonical errors. Treat them as read-only; use WithMessage to vary text.
var (
	ErrInvalidCredentials  = &APIError{StatusCode: http.StatusUnauthorized, Code: CodeInvalidCredentials, Message: "invalid identifier or password"}
	ErrMissingToken        = &APIError{StatusCode: http.StatusUnauthorized, Code: CodeMissingToken, Message: "missing bearer token"}
	ErrInvalidToken        = &APIError{StatusCode: http.StatusUnauthorized, Code: CodeInvalidToken, Message: "invalid or expired token"}
	ErrUserInactive        = &APIError{StatusCode: http.StatusUnauthorized, Code: CodeUserInactive, Message: "user is inactive or no longer exists"}
	ErrUnauthorized        = &APIError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "unable to confirm identity"}
	ErrForbidden           = &APIError{StatusCode: http.StatusForbidden, Code: CodeForbidden, Message: "insufficient permissions"}
	ErrInvalidRefreshToken = &APIError{StatusCode: http.StatusUnauthorized, Code: CodeInvalidRefreshToken, Message: "invalid refresh token"}
	ErrInvalidRequest      = &APIError{StatusCode: http.StatusBadRequest, Code: CodeInvalidRequest, Message: "invalid request"}
	ErrInternal            = &APIError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error"}
)

// parseError builds an APIError from a non-2xx response body. Bodies that
// are not JSON keep the status and a generic code.
func parseError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, e); err != nil || e.Code == "" {
		e.Code = http.StatusText(status)
		e.Message = string(body)
	}
	return e
}
