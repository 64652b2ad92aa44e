package cryptox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrCreatePepper reads the pepper stored at path, creating the file
// with a fresh random value when it does not exist. An empty path returns
// an empty pepper.
func LoadOrCreatePepper(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	if err == nil {
		pepper := strings.TrimSpace(string(b))
		if pepper == "" {
			return nil, fmt.Errorf("cryptox: pepper file %s is empty", path)
		}
		return []byte(pepper), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cryptox: read pepper: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("cryptox: create pepper dir: %w", err)
	}
	pepper, err := GenerateToken(TokenSize256)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(pepper), 0o600); err != nil {
		return nil, fmt.Errorf("cryptox: write pepper: %w", err)
	}
	return []byte(pepper), nil
}
