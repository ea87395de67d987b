package middleware

import (
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdleTTL is how long an unused bucket is kept.
const DefaultLimiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter keeps one token bucket per key. Buckets idle for longer
// than the idle TTL are dropped, so the map is bounded by the keys active
// within that TTL.
type KeyedRateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	r         rate.Limit
	b         int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	idle := DefaultLimiterIdleTTL
	// An evicted bucket must have been full anyway.
	if r > 0 {
		if refill := time.Duration(float64(b) / float64(r) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &KeyedRateLimiter{
		limiters: make(map[string]*limiterEntry),
		r:        r,
		b:        b,
		idleTTL:  idle,
		now:      time.Now,
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	k.sweep(now)

	entry, exists := k.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(k.r, k.b)}
		k.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter
}

// Len reports the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// sweep drops idle buckets at most once per idle TTL. Callers hold k.mu.
func (k *KeyedRateLimiter) sweep(now time.Time) {
	if now.Sub(k.lastSweep) < k.idleTTL {
		return
	}
	k.lastSweep = now
	for key, entry := range k.limiters {
		if now.Sub(entry.lastSeen) >= k.idleTTL {
			delete(k.limiters, key)
		}
	}
}

// retryAfter is the whole seconds until the bucket holds a token again.
func (k *KeyedRateLimiter) retryAfter() int {
	if k.r <= 0 {
		return 1
	}
	return int(math.Ceil(1 / float64(k.r)))
}

// RateLimitBySubject throttles each authenticated subject independently.
// Requests without a subject fall back to the client address.
func RateLimitBySubject(limiter *KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := SubjectID(r.Context())
			if !ok {
				key = clientIP(r)
			}
			if !limiter.GetLimiter(key).Allow() {
				response.TooManyRequests(w, "Too many attendance requests, slow down", limiter.retryAfter())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
