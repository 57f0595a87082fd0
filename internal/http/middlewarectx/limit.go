package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/sibintb/submanager/internal/http/response"
)

// limiterIdle is how long an unused per-caller limiter is kept.
const limiterIdle = 10 * time.Minute

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiters hands out one token bucket per caller.
type Limiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	callers   map[string]*callerLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewLimiters creates per-caller buckets refilled at limit tokens per second
// and holding up to burst tokens.
func NewLimiters(limit rate.Limit, burst int) *Limiters {
	return &Limiters{
		limit:   limit,
		burst:   burst,
		callers: make(map[string]*callerLimiter),
		now:     time.Now,
	}
}

// Allow takes a token from the bucket of key.
func (l *Limiters) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdle {
		for k, c := range l.callers {
			if now.Sub(c.lastSeen) > limiterIdle {
				delete(l.callers, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.callers[key]
	if !ok {
		c = &callerLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.callers[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *Limiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.callers)
}

// RateLimitMiddleware answers 429 once the caller runs out of tokens. Callers
// are told apart by the account id set by JWTMiddleware, or by the remote
// address for anonymous requests.
func RateLimitMiddleware(log *slog.Logger, limiters *Limiters) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := UserUIDFrom(r.Context())
			if !ok {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					host = r.RemoteAddr
				}
				key = "addr:" + host
			}
			if !limiters.Allow(key) {
				log.Warn("rate limit exceeded", slog.String("path", r.URL.Path), slog.String("caller", key))
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
