package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// LoginResult is a successful login.
type LoginResult struct {
	Tokens      domain.TokenPair
	User        domain.User
	Permissions rbac.PermissionSet
}

// LoginService verifies credentials and issues the first token pair.
type LoginService struct {
	Credentials *CredentialVerifier
	Tokens      *TokenService
}

func (s *LoginService) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Credentials.Verify(ctx, identifier, password)
	if err != nil {
		l.Info("login failed", slog.String("reason", FailureReason(err)), slog.Any("error", err))
		return LoginResult{}, err
	}

	pair, err := s.Tokens.Issue(u)
	if err != nil {
		l.Error("failed to issue tokens", slog.String("user_id", u.ID), slog.Any("error", err))
		return LoginResult{}, err
	}

	l.Info("login succeeded", slog.String("user_id", u.ID), slog.String("role", u.Role.String()))
	return LoginResult{
		Tokens:      pair,
		User:        u,
		Permissions: rbac.PermissionsFor(u.Role),
	}, nil
}
