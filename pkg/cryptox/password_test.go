package cryptox_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
)

func newHasher(t *testing.T, pepper string) *cryptox.Hasher {
	t.Helper()
	h, err := cryptox.NewHasher([]byte(pepper))
	require.NoError(t, err)
	return h
}

func TestHasherRoundTrip(t *testing.T) {
	h := newHasher(t, "pepper")

	tests := []struct {
		name     string
		password string
	}{
		{"simple", "password123"},
		{"symbols", "P@ssw0rd!#$%^&*()"},
		{"long", strings.Repeat("a", 100)},
		{"empty", ""},
		{"unicode", "senha-çãé-密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"))
			require.Len(t, strings.Split(hash, "$"), 6)

			require.NoError(t, h.Verify(tt.password, hash))
			require.ErrorIs(t, h.Verify(tt.password+"x", hash), cryptox.ErrMismatch)
			require.False(t, h.NeedsRehash(hash))
		})
	}
}

func TestHasherSaltsAreUnique(t *testing.T) {
	h := newHasher(t, "")
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHasherPepperIsApplied(t *testing.T) {
	hash, err := newHasher(t, "pepper-a").Hash("admin123")
	require.NoError(t, err)

	require.NoError(t, newHasher(t, "pepper-a").Verify("admin123", hash))
	require.ErrorIs(t, newHasher(t, "pepper-b").Verify("admin123", hash), cryptox.ErrMismatch)
}

func TestHasherVerifiesLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	h := newHasher(t, "pepper")
	require.NoError(t, h.Verify("admin123", string(legacy)))
	require.ErrorIs(t, h.Verify("wrong", string(legacy)), cryptox.ErrMismatch)
	require.True(t, h.NeedsRehash(string(legacy)))
}

func TestHasherRejectsBadFormats(t *testing.T) {
	h := newHasher(t, "")
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1,t=1,p=1$salt",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	} {
		require.ErrorIs(t, h.Verify("x", encoded), cryptox.ErrInvalidFormat, encoded)
	}
}

func TestGeneratePassword(t *testing.T) {
	a, err := cryptox.GeneratePassword()
	require.NoError(t, err)
	require.Len(t, a, 16)

	b, err := cryptox.GeneratePassword()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "pepper")

	first, err := cryptox.LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := cryptox.LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	none, err := cryptox.LoadOrCreatePepper("")
	require.NoError(t, err)
	require.Empty(t, none)
}
