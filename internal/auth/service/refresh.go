package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// RefreshService exchanges a refresh token for a brand-new pair.
//
// Refresh tokens are not single use: a token that has already been
// exchanged stays valid until it expires.
type RefreshService struct {
	Store         store.Store
	Tokens        *TokenService
	LookupTimeout time.Duration
}

// Refresh validates refreshToken, re-checks that its user is still active
// and issues a new pair. Validation failures and inactive users fail with
// ErrInvalidRefreshToken.
func (s *RefreshService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, domain.User, error) {
	l := slogx.FromContext(ctx).With(slog.String("refresh_fp", fingerprint(refreshToken)))

	claims, err := s.Tokens.Validate(refreshToken, jwtx.KindRefresh)
	if err != nil {
		l.Info("refresh rejected", slog.Any("error", err))
		return domain.TokenPair{}, domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}

	u, err := lookupUser(ctx, s.Store, claims.Subject, s.LookupTimeout)
	switch {
	case errors.Is(err, ErrUserInactive):
		l.Info("refresh rejected", slog.String("user_id", claims.Subject), slog.String("reason", "user not found"))
		return domain.TokenPair{}, domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	case err != nil:
		return domain.TokenPair{}, domain.User{}, err
	case !u.Active:
		l.Info("refresh rejected", slog.String("user_id", u.ID), slog.String("reason", "inactive"))
		return domain.TokenPair{}, domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, ErrUserInactive)
	}

	pair, err := s.Tokens.Issue(u)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	now := s.Tokens.Now.Now()
	if err := s.Store.Users().TouchLastAuthenticated(ctx, u.ID, now); err != nil {
		l.Warn("failed to record last authentication", slog.String("user_id", u.ID), slog.Any("error", err))
	} else {
		u.LastAuthenticatedAt = &now
	}

	l.Info("token pair refreshed", slog.String("user_id", u.ID))
	return pair, u, nil
}

func fingerprint(token string) string {
	if token == "" {
		return ""
	}
	return cryptox.FingerprintToken(token)[:16]
}
