package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds Ed25519 verification keys by kid. It is safe for
// concurrent use.
type KeySet struct {
	mu  sync.RWMutex
	jks JWKS
	pub map[string]ed25519.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]ed25519.PublicKey)}
}

// AddJWK parses j and adds it to the set.
func (k *KeySet) AddJWK(j JWK) error {
	key, err := parseJWK(j)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub[j.Kid] = key
	k.jks.Keys = append(k.jks.Keys, j)
	return nil
}

// Get returns the public key for kid.
func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns a copy of the set for HTTP serving.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: append([]JWK{}, k.jks.Keys...)}
}

func parseJWK(j JWK) (ed25519.PublicKey, error) {
	if j.Kty != "OKP" || j.Crv != "Ed25519" {
		return nil, errors.New("jwtx: unsupported key " + j.Kty + "/" + j.Crv)
	}
	xb, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, err
	}
	if len(xb) != ed25519.PublicKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 public key size")
	}
	return ed25519.PublicKey(xb), nil
}
