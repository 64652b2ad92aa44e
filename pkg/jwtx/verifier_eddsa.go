package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSAVerifier validates Ed25519 tokens of one kind against a KeySet.
type EdDSAVerifier struct {
	keys   *KeySet
	kind   Kind
	parser *jwt.Parser
}

// NewVerifierEdDSA creates a verifier using a KeySet of Ed25519 public keys.
func NewVerifierEdDSA(keys *KeySet, kind Kind, opts VerifyOptions) *EdDSAVerifier {
	return &EdDSAVerifier{
		keys:   keys,
		kind:   kind,
		parser: opts.parser(jwt.SigningMethodEdDSA.Alg()),
	}
}

func (v *EdDSAVerifier) Verify(token string) (Claims, error) {
	return verify(v.parser, v.kind, token, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}
		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})
}
