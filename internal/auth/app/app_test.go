package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/pkg/authsdk"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
)

func TestNewWiresBootstrapAdmin(t *testing.T) {
	dir := t.TempDir()
	defer slog.SetDefault(slog.Default())

	cfg := validConfig()
	cfg.LogLevel = "error"
	cfg.DatabaseFile = filepath.Join(dir, "auth.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.Bootstrap.Email = "admin@example.org"
	cfg.Bootstrap.Password = "admin123"

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.db.Close() })

	_, err = os.Stat(cfg.PepperFile)
	require.NoError(t, err)

	body, err := json.Marshal(authsdk.LoginRequest{EmailOrCPF: "admin@example.org", Password: "admin123"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp authsdk.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Permissions, rbac.PermAdminFullAccess)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Algorithm = "none"
	_, err := New(cfg)
	require.Error(t, err)
}

func TestInitAuthKeysPersistsEdDSAKeys(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := validConfig()
	cfg.Algorithm = jwtx.AlgorithmEdDSA
	cfg.AccessKeyFile = filepath.Join(dir, "keys", "access.pem")
	cfg.RefreshKeyFile = filepath.Join(dir, "keys", "refresh.pem")

	first, err := InitAuthKeys(cfg, nil, logger)
	require.NoError(t, err)
	tok, err := first.Sign(jwtx.NewAccessClaims("01USER", "MEDICO", "", cfg.Issuer, cfg.AccessTTL, time.Now()))
	require.NoError(t, err)

	info, err := os.Stat(cfg.AccessKeyFile)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A restart with the same files verifies tokens from before.
	second, err := InitAuthKeys(cfg, nil, logger)
	require.NoError(t, err)
	_, err = second.Verify(jwtx.KindAccess, tok)
	require.NoError(t, err)
	require.Equal(t, first.AccessJWKS(), second.AccessJWKS())
}
