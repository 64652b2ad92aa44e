package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the hospital auth service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Now is the clock sessions use to decide when to refresh.
	Now func() time.Time
}

// NewClient returns a Client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Now:        time.Now,
	}
}

// Login exchanges an email or CPF plus password for a token pair.
func (c *Client) Login(ctx context.Context, identifier, password string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", LoginRequest{Identifier: identifier, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a brand-new pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks an access token.
func (c *Client) Validate(ctx context.Context, accessToken string) (*ValidateResponse, error) {
	var out ValidateResponse
	if err := c.do(ctx, http.MethodGet, "/auth/validate", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the caller's identity and current permissions.
func (c *Client) Me(ctx context.Context, accessToken string) (*MeResponse, error) {
	var out MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout acknowledges the client is discarding its tokens. It does not
// invalidate them server-side.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	var out LogoutResponse
	return c.do(ctx, http.MethodPost, "/auth/logout", accessToken, nil, &out)
}

// Roles lists the permission catalog. The caller needs admin:full_access
// or user:read.
func (c *Client) Roles(ctx context.Context, accessToken string) (*RolesResponse, error) {
	var out RolesResponse
	if err := c.do(ctx, http.MethodGet, "/auth/roles", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Authenticate logs in and wraps the resulting pair in a Session.
func (c *Client) Authenticate(ctx context.Context, identifier, password string) (*Session, error) {
	tr, err := c.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tr), nil
}

// NewSession wraps tokens obtained elsewhere. expiresIn is the access
// token lifetime in seconds.
func (c *Client) NewSession(accessToken, refreshToken string, expiresIn int) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		TokenType:    TokenTypeBearer,
	})
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("authsdk: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("authsdk: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("authsdk: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("authsdk: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("authsdk: decode response: %w", err)
	}
	return nil
}
