package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// windowLimiter counts requests per key in fixed windows.
type windowLimiter struct {
	limit int
	per   time.Duration

	mu        sync.Mutex
	windows   map[string]window
	lastSweep time.Time
}

type window struct {
	count int
	until time.Time
}

func newWindowLimiter(limit int, per time.Duration) *windowLimiter {
	return &windowLimiter{limit: limit, per: per, windows: make(map[string]window)}
}

// allow records one request for key at now. When the key is over its limit it
// returns false and how long until the window resets.
func (l *windowLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.per {
		for k, w := range l.windows {
			if !now.Before(w.until) {
				delete(l.windows, k)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.windows[key]
	if !ok || !now.Before(w.until) {
		w = window{until: now.Add(l.per)}
	}
	if w.count >= l.limit {
		return false, w.until.Sub(now)
	}
	w.count++
	l.windows[key] = w
	return true, 0
}

// RateLimit admits at most limit requests per client IP in each window of
// length per. A non-positive limit disables the check.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newWindowLimiter(limit, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.allow(ClientIP(r), time.Now())
			if !ok {
				// round up so clients never retry inside the window
				secs := int((wait + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": "rate_limited", "message": "too many requests"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
