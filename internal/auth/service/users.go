package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
	"github.com/aussiebroadwan/hospitalauth/pkg/idx"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// MinPasswordLength applies to passwords set through UserService.
const MinPasswordLength = 8

// UserService manages identities on behalf of operators.
type UserService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Now    Clock
}

// CreateUser validates nu, hashes its password and stores it.
func (s *UserService) CreateUser(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	u, err := s.newUser(nu)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", u.ID),
		slog.String("role", u.Role.String()),
	)
	return u, nil
}

// SetActive activates or deactivates a user. It takes effect on the next
// request the user makes.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	return s.Store.Users().SetActive(ctx, id, active, s.Now.Now())
}

// SetRole changes a user's role.
func (s *UserService) SetRole(ctx context.Context, id string, role rbac.RoleTag) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidInput, rbac.ErrUnknownRole, role)
	}
	return s.Store.Users().SetRole(ctx, id, role, s.Now.Now())
}

func (s *UserService) newUser(nu domain.NewUser) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: email %q", ErrInvalidInput, nu.Email)
	}
	name := strings.TrimSpace(nu.DisplayName)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}
	if !nu.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, rbac.ErrUnknownRole, nu.Role)
	}
	if len(nu.Password) < MinPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	nationalID := DigitsOnly(nu.NationalID)
	if nu.NationalID != "" && nationalID == "" {
		return domain.User{}, fmt.Errorf("%w: national id %q", ErrInvalidInput, nu.NationalID)
	}

	hash, err := s.Hasher.Hash(nu.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.Now.Now()
	return domain.User{
		ID:             idx.NewAt(now).String(),
		DisplayName:    name,
		Email:          email,
		NationalID:     nationalID,
		Role:           nu.Role,
		OrganizationID: strings.TrimSpace(nu.OrganizationID),
		Active:         true,
		PasswordHash:   hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
