package authsdk

import "time"

// TokenTypeBearer is the only token type the service issues.
const TokenTypeBearer = "Bearer"

// LoginRequest is the body of POST /auth/login. EmailOrCPF is accepted as
// an alias of Identifier for older dashboard clients.
type LoginRequest struct {
	Identifier string `json:"identifier,omitempty"`
	EmailOrCPF string `json:"emailOrCpf,omitempty"`
	Password   string `json:"password"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Identity is the public view of a user. It never includes the password
// hash.
type Identity struct {
	ID                  string     `json:"id"`
	DisplayName         string     `json:"displayName"`
	Email               string     `json:"email"`
	NationalID          string     `json:"nationalId,omitempty"`
	Role                string     `json:"role"`
	OrganizationID      string     `json:"organizationId,omitempty"`
	Active              bool       `json:"active"`
	LastAuthenticatedAt *time.Time `json:"lastAuthenticatedAt,omitempty"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    int       `json:"expiresIn"`
	TokenType    string    `json:"tokenType"`
	Identity     *Identity `json:"identity,omitempty"`
	Permissions  []string  `json:"permissions,omitempty"`
}

// ValidateResponse is returned by GET /auth/validate.
type ValidateResponse struct {
	Valid     bool      `json:"valid"`
	Subject   string    `json:"sub,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	Identity    Identity `json:"identity"`
	Permissions []string `json:"permissions"`
}

// LogoutResponse is returned by POST /auth/logout.
type LogoutResponse struct {
	LoggedOut bool `json:"loggedOut"`
}

// RoleInfo is one row of the permission catalog.
type RoleInfo struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// RolesResponse is returned by GET /auth/roles.
type RolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
