package authsdk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// refreshSkew is how long before access expiry a Session rotates.
const refreshSkew = 30 * time.Second

var ErrNoRefreshToken = errors.New("authsdk: access token expired and no refresh token available")

// Session holds a token pair and rotates it before the access token
// expires. It is safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	refreshAt    time.Time
	permissions  []string
}

func newSession(c *Client, tr *TokenResponse) *Session {
	s := &Session{client: c}
	s.apply(tr)
	return s
}

// apply stores tr. Callers hold mu or own s exclusively.
func (s *Session) apply(tr *TokenResponse) {
	s.accessToken = tr.AccessToken
	s.refreshToken = tr.RefreshToken
	s.refreshAt = s.client.now().Add(time.Duration(tr.ExpiresIn)*time.Second - refreshSkew)
	if tr.Permissions != nil {
		s.permissions = slices.Clone(tr.Permissions)
	}
}

// Token returns a usable access token, rotating the pair first when the
// current one is about to expire.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.client.now().Before(s.refreshAt) {
		tok := s.accessToken
		s.mu.RUnlock()
		return tok, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have rotated while we waited.
	if s.client.now().Before(s.refreshAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	tr, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("authsdk: refresh: %w", err)
	}
	s.apply(tr)
	return s.accessToken, nil
}

// Tokens returns the pair currently held without refreshing.
func (s *Session) Tokens() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

// Permissions returns the permissions reported at the last login. They
// are advisory; the server decides on every request.
func (s *Session) Permissions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.permissions)
}

// Me calls GET /auth/me with a fresh token.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	me, err := s.client.Me(ctx, tok)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.permissions = slices.Clone(me.Permissions)
	s.mu.Unlock()
	return me, nil
}

// Validate calls GET /auth/validate with a fresh token.
func (s *Session) Validate(ctx context.Context) (*ValidateResponse, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Validate(ctx, tok)
}

// Logout acknowledges logout and forgets both tokens.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	tok := s.accessToken
	s.accessToken, s.refreshToken = "", ""
	s.refreshAt = time.Time{}
	s.permissions = nil
	s.mu.Unlock()

	if tok == "" {
		return nil
	}
	return s.client.Logout(ctx, tok)
}
