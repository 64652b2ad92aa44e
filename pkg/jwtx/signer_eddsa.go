package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
)

// EdDSASigner implements the Signer interface using Ed25519.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewSignerEdDSA loads a PKCS8 Ed25519 private key from PEM. The kid is
// derived from the public key so restarts with the same file keep it.
func NewSignerEdDSA(pemKey []byte) (*EdDSASigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not Ed25519 private key")
	}
	pub := key.Public().(ed25519.PublicKey)

	return &EdDSASigner{
		kid: cryptox.FingerprintToken(string(pub))[:16],
		key: key,
		pub: pub,
	}, nil
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }

func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK returns the verification key for publishing in a JWKS.
func (s *EdDSASigner) PublicJWK() JWK {
	return NewEd25519JWK(s.kid, "sig", s.Alg(), s.pub)
}
