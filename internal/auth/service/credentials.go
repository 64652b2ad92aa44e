package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/store"
	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// IdentifierKind says which store lookup an identifier routes to.
type IdentifierKind int

const (
	IdentifierEmail IdentifierKind = iota + 1
	IdentifierNationalID
)

// NormalizeIdentifier sniffs the identifier format. Anything containing
// '@' is an email and is lower-cased; everything else is a national id
// reduced to its digits. ok is false when nothing usable is left.
func NormalizeIdentifier(raw string) (kind IdentifierKind, value string, ok bool) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "@") {
		return IdentifierEmail, strings.ToLower(raw), true
	}
	return IdentifierNationalID, DigitsOnly(raw), DigitsOnly(raw) != ""
}

// DigitsOnly strips everything but ASCII digits, so "123.456.789-09"
// becomes "12345678909".
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CredentialVerifier checks an identifier and password against the user
// store. Each store call is bounded by LookupTimeout (DefaultLookupTimeout
// when zero).
type CredentialVerifier struct {
	Store         store.Store
	Hasher        *cryptox.Hasher
	Now           Clock
	LookupTimeout time.Duration
}

// Verify returns the matching active user. Unknown identifier, wrong
// password and inactive user all fail with ErrInvalidCredentials; the
// specific cause is wrapped alongside it. A store that does not answer
// within the lookup timeout fails closed with ErrUnauthorized.
func (v *CredentialVerifier) Verify(ctx context.Context, identifier, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	u, err := v.lookup(ctx, identifier)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Same hashing cost as a real user.
		v.Hasher.Dummy(password)
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, errUnknownIdentifier)
	case err != nil:
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := v.Hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			l.Error("stored password hash unreadable", slog.String("user_id", u.ID), slog.Any("error", err))
		}
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, errBadPassword)
	}

	// Checked after the hash so inactive accounts cost the same.
	if !u.Active {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrUserInactive)
	}

	now := v.Now.Now()
	users := v.Store.Users()

	wctx, cancel := context.WithTimeout(ctx, v.timeout())
	defer cancel()

	if v.Hasher.NeedsRehash(u.PasswordHash) {
		if hash, err := v.Hasher.Hash(password); err == nil {
			if err := users.UpdatePasswordHash(wctx, u.ID, hash, now); err != nil {
				l.Warn("failed to upgrade password hash", slog.String("user_id", u.ID), slog.Any("error", err))
			} else {
				u.PasswordHash = hash
				l.Info("upgraded legacy password hash", slog.String("user_id", u.ID))
			}
		}
	}

	if err := users.TouchLastAuthenticated(wctx, u.ID, now); err != nil {
		// A stale timestamp is not worth failing the login for.
		l.Warn("failed to record last authentication", slog.String("user_id", u.ID), slog.Any("error", err))
	} else {
		u.LastAuthenticatedAt = &now
	}

	return u, nil
}

func (v *CredentialVerifier) timeout() time.Duration {
	if v.LookupTimeout <= 0 {
		return DefaultLookupTimeout
	}
	return v.LookupTimeout
}

func (v *CredentialVerifier) lookup(ctx context.Context, identifier string) (domain.User, error) {
	kind, value, ok := NormalizeIdentifier(identifier)
	if !ok {
		return domain.User{}, store.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout())
	defer cancel()

	var (
		u   domain.User
		err error
	)
	if kind == IdentifierEmail {
		u, err = v.Store.Users().GetUserByEmail(ctx, value)
	} else {
		u, err = v.Store.Users().GetUserByNationalID(ctx, value)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) && ctx.Err() != nil {
		return domain.User{}, fmt.Errorf("%w: user lookup: %w", ErrUnauthorized, err)
	}
	return u, err
}
