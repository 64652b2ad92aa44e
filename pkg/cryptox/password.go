package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2id parameters for new hashes.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	ErrMismatch      = errors.New("cryptox: password does not match")
	ErrInvalidFormat = errors.New("cryptox: unrecognised hash format")
)

// Hasher hashes and verifies passwords. New hashes are Argon2id with the
// pepper appended to the password. Legacy bcrypt hashes are verified
// without the pepper.
type Hasher struct {
	pepper []byte
	dummy  string
}

// NewHasher returns a Hasher using pepper. An empty pepper is allowed and
// means no pepper.
func NewHasher(pepper []byte) (*Hasher, error) {
	h := &Hasher{pepper: append([]byte(nil), pepper...)}

	// Hashed once so Dummy costs the same as a real verification.
	dummy, err := h.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

func (h *Hasher) peppered(password string) []byte {
	b := make([]byte, 0, len(password)+len(h.pepper))
	b = append(b, password...)
	return append(b, h.pepper...)
}

// Hash returns a PHC-format Argon2id hash including salt and parameters.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	sum := argon2.IDKey(h.peppered(password), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify compares password against encoded, which may be Argon2id or
// bcrypt ($2a$, $2b$, $2y$). It returns ErrMismatch for a wrong password
// and ErrInvalidFormat when encoded cannot be parsed.
func (h *Hasher) Verify(password, encoded string) error {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return h.verifyArgon2(password, encoded)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return ErrMismatch
		default:
			return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	default:
		return ErrInvalidFormat
	}
}

// Dummy burns one verification worth of work. Callers use it when the
// account does not exist so response timing does not reveal that.
func (h *Hasher) Dummy(password string) {
	_ = h.verifyArgon2(password, h.dummy)
}

// NeedsRehash reports whether encoded should be replaced by a fresh Hash.
func (h *Hasher) NeedsRehash(encoded string) bool {
	return !strings.HasPrefix(encoded, fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$", memory, iterations, parallelism))
}

func (h *Hasher) verifyArgon2(password, encoded string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return ErrInvalidFormat
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: parameters: %v", ErrInvalidFormat, err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrInvalidFormat, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return fmt.Errorf("%w: hash", ErrInvalidFormat)
	}

	got := argon2.IDKey(h.peppered(password), salt, iters, mem, par, uint32(len(want))) // #nosec G115
	if subtle.ConstantTimeCompare(got, want) == 1 {
		return nil
	}
	return ErrMismatch
}

// GeneratePassword returns a random 16 character alphanumeric password.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("cryptox: generate password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
