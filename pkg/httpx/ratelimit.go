package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/hospitalauth/pkg/slogx"
)

// RateLimit describes a token bucket: Requests per Window, with Burst
// tokens available up front.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Profiles shared by the auth service. Each can be overridden with
// RATELIMIT_<NAME>_REQUESTS, RATELIMIT_<NAME>_WINDOW_SEC and
// RATELIMIT_<NAME>_BURST.
var (
	// StrictLimit guards credential endpoints (login, refresh).
	StrictLimit = RateLimit{Requests: 10, Window: time.Minute, Burst: 10}

	// ModerateLimit guards authenticated calls such as validate and me.
	ModerateLimit = RateLimit{Requests: 120, Window: time.Minute, Burst: 60}

	// LenientLimit guards permission-gated application routes.
	LenientLimit = RateLimit{Requests: 600, Window: time.Minute, Burst: 200}

	// PublicLimit guards unauthenticated read-only endpoints.
	PublicLimit = RateLimit{Requests: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	StrictLimit = RateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = RateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = RateLimitFromEnv("LENIENT", LenientLimit)
	PublicLimit = RateLimitFromEnv("PUBLIC", PublicLimit)
}

// RateLimitFromEnv overlays RATELIMIT_<prefix>_* variables onto def.
// Non-positive or unparsable values are ignored.
func RateLimitFromEnv(prefix string, def RateLimit) RateLimit {
	out := def
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		out.Requests = n
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		out.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_BURST"); ok {
		out.Burst = n
	}
	return out
}

func positiveEnv(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(*http.Request) string

// ClientIP returns the originating client address, honouring
// X-Forwarded-For and X-Real-IP when present.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SubjectOrIP keys authenticated requests by subject and falls back to the
// client address otherwise.
func SubjectOrIP(r *http.Request) string {
	if sub := SubjectFromContext(r.Context()); sub != "" {
		return "sub:" + sub
	}
	return "ip:" + ClientIP(r)
}

type limiterTable struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
}

const limiterSweepInterval = 5 * time.Minute

func (t *limiterTable) get(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.lastCleanup) > limiterSweepInterval {
		// A full bucket means the key has been idle long enough to forget.
		for k, l := range t.limiters {
			if l.Tokens() >= float64(t.burst) {
				delete(t.limiters, k)
			}
		}
		t.lastCleanup = time.Now()
	}

	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[key] = l
	}
	return l
}

// RateLimitMiddleware rejects requests over cfg with 429 RATE_LIMITED.
// Requests for which key returns "" are passed through.
func RateLimitMiddleware(cfg RateLimit, key KeyFunc) Middleware {
	table := &limiterTable{
		limiters:    make(map[string]*rate.Limiter),
		limit:       rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			l := table.get(k)
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := l.Reserve()
			retry := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retry,
			)

			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"code":    "RATE_LIMITED",
				"message": "too many requests, try again later",
			})
		})
	}
}
