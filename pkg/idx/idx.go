// Package idx generates and parses the ULID identifiers used for users,
// organizations and request ids.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a canonical, upper-case ULID string.
type ID string

// Zero is the empty ID.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	mu      sync.Mutex
	once    sync.Once
	entropy *ulid.MonotonicEntropy
)

func source() *ulid.MonotonicEntropy {
	once.Do(func() {
		entropy = ulid.Monotonic(rand.Reader, 0)
	})
	return entropy
}

// New returns a lexicographically sortable ID for the current UTC time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an ID carrying the given timestamp. Safe for concurrent use.
func NewAt(t time.Time) ID {
	src := source()

	mu.Lock()
	defer mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t), src).String())
}

// Parse validates s as a ULID and returns it as an ID.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(strings.ToUpper(s)), nil
}

// MustParse is Parse for hard-coded fixtures; it panics on bad input.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

func (id ID) String() string { return string(id) }

// Time extracts the embedded timestamp, or the zero time for invalid ids.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time()).UTC()
}
