package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// BootstrapConfig describes the first administrator.
type BootstrapConfig struct {
	Email          string
	Password       string
	DisplayName    string
	OrganizationID string
}

func (c BootstrapConfig) Enabled() bool {
	return strings.TrimSpace(c.Email) != "" && c.Password != ""
}

// BootstrapService seeds an empty user store with a SUPER_ADMIN.
type BootstrapService struct {
	Users *UserService
}

// EnsureSuperAdmin creates the configured administrator when the store
// holds no users. It reports whether a user was created.
func (s *BootstrapService) EnsureSuperAdmin(ctx context.Context, cfg BootstrapConfig) (bool, error) {
	l := slogx.FromContext(ctx)

	if !cfg.Enabled() {
		l.Debug("bootstrap skipped, no administrator configured")
		return false, nil
	}

	name := cfg.DisplayName
	if name == "" {
		name = "Administrator"
	}

	// 1. Validate and hash outside the transaction.
	u, err := s.Users.newUser(domain.NewUser{
		DisplayName:    name,
		Email:          cfg.Email,
		Role:           rbac.RoleSuperAdmin,
		OrganizationID: cfg.OrganizationID,
		Password:       cfg.Password,
	})
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}

	// 2. Check and insert atomically.
	created := false
	err = s.Users.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return nil
		}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}

	if created {
		l.Info("bootstrap administrator created", slog.String("user_id", u.ID), slog.String("email", u.Email))
	} else {
		l.Debug("bootstrap skipped, users already exist")
	}
	return created, nil
}
