package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
)

// DefaultLookupTimeout bounds a single user-store read.
const DefaultLookupTimeout = 2 * time.Second

// Principal is the identity behind an authorized request. It lives for one
// request only.
type Principal struct {
	User        domain.User
	Permissions rbac.PermissionSet
	Claims      jwtx.Claims
}

// SessionService resolves a bearer access token to a Principal, re-reading
// the user on every call so deactivation takes effect immediately.
type SessionService struct {
	Store         store.Store
	Tokens        *TokenService
	LookupTimeout time.Duration
}

// Resolve validates an access token and loads its user. Permissions come
// from the stored role, not the role claim.
func (s *SessionService) Resolve(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.Tokens.Validate(accessToken, jwtx.KindAccess)
	if err != nil {
		return nil, err
	}

	u, err := lookupUser(ctx, s.Store, claims.Subject, s.LookupTimeout)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, ErrUserInactive
	}

	return &Principal{
		User:        u,
		Permissions: rbac.PermissionsFor(u.Role),
		Claims:      claims,
	}, nil
}

// lookupUser reads a user by id under a bounded timeout. A missing user is
// ErrUserInactive and a timed out or cancelled read is ErrUnauthorized.
func lookupUser(ctx context.Context, st store.Store, id string, timeout time.Duration) (domain.User, error) {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u, err := st.Users().GetUserByID(ctx, id)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, fmt.Errorf("%w: %w", ErrUserInactive, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), ctx.Err() != nil:
		return domain.User{}, fmt.Errorf("%w: user lookup: %w", ErrUnauthorized, err)
	default:
		return domain.User{}, fmt.Errorf("user lookup: %w", err)
	}
}
