package domain

import (
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
)

// User is an Identity as held by the user store.
type User struct {
	ID                  string
	DisplayName         string
	Email               string // lower-cased
	NationalID          string // CPF digits only, empty when unknown
	Role                rbac.RoleTag
	OrganizationID      string
	Active              bool
	PasswordHash        string // argon2id PHC or legacy bcrypt
	LastAuthenticatedAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewUser is the input for creating a user. Password is plaintext and is
// hashed before it reaches the store.
type NewUser struct {
	DisplayName    string
	Email          string
	NationalID     string
	Role           rbac.RoleTag
	OrganizationID string
	Password       string
}
