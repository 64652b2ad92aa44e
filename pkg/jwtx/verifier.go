package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT of one kind and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must carry. Empty means "don't care".
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf/iat.
	Leeway time.Duration

	// Now overrides the clock. Nil uses time.Now.
	Now func() time.Time
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrUnknownKID   = errors.New("jwtx: unknown kid")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
	ErrKindMismatch = errors.New("jwtx: token kind mismatch")
)

func (o VerifyOptions) parser(alg string) *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(o.Leeway),
	}
	if o.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(o.Issuer))
	}
	if o.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(o.Now))
	}
	return jwt.NewParser(opts...)
}

// verify runs the parser and folds jwt errors onto the jwtx sentinels.
func verify(p *jwt.Parser, kind Kind, token string, key jwt.Keyfunc) (Claims, error) {
	if err := rejectUnknownClaims(token); err != nil {
		return Claims{}, err
	}

	var c Claims
	if _, err := p.ParseWithClaims(token, &c, key); err != nil {
		return Claims{}, mapParseError(err)
	}
	if c.Kind != kind {
		return Claims{}, fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, kind, c.Kind)
	}
	return c, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKID):
		return ErrUnknownKID
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, ErrInvalidClaim), errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// HS256Verifier validates HMAC-SHA256 tokens of one kind.
type HS256Verifier struct {
	secret []byte
	kind   Kind
	parser *jwt.Parser
}

func NewVerifierHS256(secret []byte, kind Kind, opts VerifyOptions) *HS256Verifier {
	return &HS256Verifier{
		secret: append([]byte(nil), secret...),
		kind:   kind,
		parser: opts.parser(jwt.SigningMethodHS256.Alg()),
	}
}

func (v *HS256Verifier) Verify(token string) (Claims, error) {
	return verify(v.parser, v.kind, token, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
}
