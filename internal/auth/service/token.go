package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
)

const TokenTypeBearer = "Bearer"

// TokenService issues and validates access/refresh token pairs. It holds
// no per-session state.
type TokenService struct {
	Keys       *jwtx.KeyManager
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        Clock
}

// NewTokenService checks TTLs so a bad configuration fails at start-up.
func NewTokenService(keys *jwtx.KeyManager, issuer string, accessTTL, refreshTTL time.Duration, now Clock) (*TokenService, error) {
	if keys == nil {
		return nil, errors.New("token service: key manager is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token service: TTLs must be positive (access %s, refresh %s)", accessTTL, refreshTTL)
	}
	if accessTTL > refreshTTL {
		return nil, fmt.Errorf("token service: access TTL %s exceeds refresh TTL %s", accessTTL, refreshTTL)
	}
	return &TokenService{
		Keys:       keys,
		Issuer:     issuer,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Now:        now,
	}, nil
}

// Issue mints a fresh access and refresh token for u.
func (s *TokenService) Issue(u domain.User) (domain.TokenPair, error) {
	now := s.Now.Now()

	access, err := s.Keys.Sign(jwtx.NewAccessClaims(u.ID, u.Role.String(), u.OrganizationID, s.Issuer, s.AccessTTL, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.Keys.Sign(jwtx.NewRefreshClaims(u.ID, s.Issuer, s.RefreshTTL, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int(s.AccessTTL / time.Second),
	}, nil
}

// Validate verifies token as the given kind. It fails with
// ErrTokenExpired, ErrTokenKindMismatch or ErrTokenMalformed.
func (s *TokenService) Validate(token string, kind jwtx.Kind) (jwtx.Claims, error) {
	if token == "" {
		return jwtx.Claims{}, ErrMissingToken
	}
	claims, err := s.Keys.Verify(kind, token)
	if err != nil {
		return jwtx.Claims{}, classifyTokenError(err)
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwtx.ErrKindMismatch):
		return fmt.Errorf("%w: %w", ErrTokenKindMismatch, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}

// IsTokenError reports whether err came from token validation.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenKindMismatch) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrMissingToken)
}
