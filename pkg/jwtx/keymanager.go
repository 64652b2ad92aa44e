package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
)

var ErrSharedKey = errors.New("jwtx: access and refresh keys must differ")

// KeyManagerOptions configures signing material for both token kinds.
type KeyManagerOptions struct {
	// Algorithm is HS256 or EdDSA.
	Algorithm string

	// Issuer is stamped into and required on every token.
	Issuer string

	// Leeway tolerates clock skew on exp/nbf/iat.
	Leeway time.Duration

	// Now overrides the verification clock.
	Now func() time.Time

	// HS256 secrets, one per kind.
	AccessSecret  []byte
	RefreshSecret []byte

	// EdDSA PKCS8 PEM keys, one per kind. An empty value generates an
	// ephemeral key that lives only as long as the process.
	AccessKeyPEM  []byte
	RefreshKeyPEM []byte
}

type kindKeys struct {
	signer   Signer
	verifier Verifier
	keyset   *KeySet
}

// KeyManager signs and verifies both token kinds, each with its own key.
type KeyManager struct {
	algorithm string
	keys      map[Kind]kindKeys
}

// NewKeyManager validates opts and builds signers and verifiers for both
// kinds.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}
	vo := VerifyOptions{Issuer: opts.Issuer, Leeway: opts.Leeway, Now: opts.Now}

	km := &KeyManager{algorithm: opts.Algorithm, keys: make(map[Kind]kindKeys, 2)}

	switch opts.Algorithm {
	case AlgorithmHS256:
		if bytes.Equal(opts.AccessSecret, opts.RefreshSecret) {
			return nil, ErrSharedKey
		}
		for kind, secret := range map[Kind][]byte{KindAccess: opts.AccessSecret, KindRefresh: opts.RefreshSecret} {
			s, err := NewSignerHS256(secret)
			if err != nil {
				return nil, fmt.Errorf("jwtx: %s key: %w", kind, err)
			}
			km.keys[kind] = kindKeys{signer: s, verifier: NewVerifierHS256(secret, kind, vo)}
		}

	case AlgorithmEdDSA:
		if len(opts.AccessKeyPEM) > 0 && bytes.Equal(opts.AccessKeyPEM, opts.RefreshKeyPEM) {
			return nil, ErrSharedKey
		}
		for kind, pemKey := range map[Kind][]byte{KindAccess: opts.AccessKeyPEM, KindRefresh: opts.RefreshKeyPEM} {
			kk, err := newEdDSAKeys(kind, pemKey, vo)
			if err != nil {
				return nil, fmt.Errorf("jwtx: %s key: %w", kind, err)
			}
			km.keys[kind] = kk
		}

	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: HS256, EdDSA)", opts.Algorithm)
	}

	return km, nil
}

func newEdDSAKeys(kind Kind, pemKey []byte, vo VerifyOptions) (kindKeys, error) {
	if len(pemKey) == 0 {
		var err error
		if pemKey, err = cryptox.GenerateEd25519Key(); err != nil {
			return kindKeys{}, err
		}
	}
	s, err := NewSignerEdDSA(pemKey)
	if err != nil {
		return kindKeys{}, err
	}
	ks := NewKeySet()
	if err := ks.AddJWK(s.PublicJWK()); err != nil {
		return kindKeys{}, err
	}
	return kindKeys{signer: s, verifier: NewVerifierEdDSA(ks, kind, vo), keyset: ks}, nil
}

// Algorithm returns the signing algorithm in use.
func (km *KeyManager) Algorithm() string { return km.algorithm }

// Sign signs claims with the key for claims.Kind.
func (km *KeyManager) Sign(claims Claims) (string, error) {
	kk, ok := km.keys[claims.Kind]
	if !ok {
		return "", fmt.Errorf("%w: typ %q", ErrInvalidClaim, claims.Kind)
	}
	return kk.signer.Sign(claims)
}

// Verify checks token against the key for kind. A token that fails there
// but verifies under the other kind's key is reported as ErrKindMismatch.
func (km *KeyManager) Verify(kind Kind, token string) (Claims, error) {
	kk, ok := km.keys[kind]
	if !ok {
		return Claims{}, fmt.Errorf("jwtx: unknown kind %q", kind)
	}

	c, err := kk.verifier.Verify(token)
	if err == nil || !(errors.Is(err, ErrInvalidSig) || errors.Is(err, ErrUnknownKID)) {
		return c, err
	}

	if other, ok := km.keys[kind.Other()]; ok {
		if _, oerr := other.verifier.Verify(token); oerr == nil {
			return Claims{}, fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, kind, kind.Other())
		}
	}
	return Claims{}, err
}

// AccessJWKS returns the public access-token keys. It is empty for HS256
// and never includes refresh keys.
func (km *KeyManager) AccessJWKS() JWKS {
	if ks := km.keys[KindAccess].keyset; ks != nil {
		return ks.PublicJWKS()
	}
	return JWKS{Keys: []JWK{}}
}
