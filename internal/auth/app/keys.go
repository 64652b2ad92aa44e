package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
	"github.com/aussiebroadwan/hospitalauth/pkg/jwtx"
)

// InitAuthKeys builds the per-kind KeyManager from cfg.
//
// Key sources by algorithm:
//   - HS256: AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET.
//   - EdDSA: PKCS8 PEM files. A configured file that does not exist yet
//     is generated and written so tokens survive a restart; an empty path
//     means an in-memory key and every token dies with the process.
func InitAuthKeys(cfg Config, now func() time.Time, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
		Leeway:    cfg.TokenLeeway,
		Now:       now,
	}

	switch cfg.Algorithm {
	case jwtx.AlgorithmHS256:
		opts.AccessSecret = cfg.AccessSecret
		opts.RefreshSecret = cfg.RefreshSecret

	case jwtx.AlgorithmEdDSA:
		var err error
		if opts.AccessKeyPEM, err = loadOrCreateKey(cfg.AccessKeyFile, logger); err != nil {
			return nil, fmt.Errorf("access key: %w", err)
		}
		if opts.RefreshKeyPEM, err = loadOrCreateKey(cfg.RefreshKeyFile, logger); err != nil {
			return nil, fmt.Errorf("refresh key: %w", err)
		}
		if cfg.AccessKeyFile == "" || cfg.RefreshKeyFile == "" {
			logger.Warn("using ephemeral signing keys, tokens will not survive a restart")
		}
	}

	km, err := jwtx.NewKeyManager(opts)
	if err != nil {
		return nil, err
	}

	logger.Info("signing keys ready",
		slog.String("algorithm", km.Algorithm()),
		slog.Int("published_keys", len(km.AccessJWKS().Keys)),
	)
	return km, nil
}

func loadOrCreateKey(path string, logger *slog.Logger) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, pemKey, 0o600); err != nil {
		return nil, err
	}
	logger.Info("generated signing key", slog.String("path", path))
	return pemKey, nil
}
