package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
)

// JWK is an Ed25519 public key in JSON Web Key format (RFC 8037).
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	Kid string `json:"kid,omitempty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
}

// JWKS is a JSON Web Key Set (RFC 7517).
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewEd25519JWK builds an OKP JWK for pub.
func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}
