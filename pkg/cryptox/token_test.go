package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{cryptox.TokenSize128, cryptox.TokenSize256, 24} {
		a, err := cryptox.GenerateToken(size)
		require.NoError(t, err)
		b, err := cryptox.GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	}

	for _, size := range []int{0, -1} {
		tok, err := cryptox.GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, tok)
	}
}

func TestFingerprintToken(t *testing.T) {
	a := cryptox.FingerprintToken("token-1")
	require.Equal(t, a, cryptox.FingerprintToken("token-1"))
	require.NotEqual(t, a, cryptox.FingerprintToken("token-2"))
	require.Len(t, a, 43)
}

func TestGenerateEd25519Key(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	priv, ok := key.(ed25519.PrivateKey)
	require.True(t, ok)
	require.Len(t, priv, ed25519.PrivateKeySize)
}
