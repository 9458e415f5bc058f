// Package ratelimit throttles requests per tenant host using a token
// bucket per key, backed by golang.org/x/time/rate instead of a hand-rolled
// bucket.
package ratelimit

import (
	"net/http"
	"sync"

	"github.com/edgerun/edgerun/apperrors"
	"golang.org/x/time/rate"
)

// Limiter holds one rate.Limiter per key (typically the tenant host),
// created lazily on first use.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// New creates a Limiter allowing rps requests per second per key, with
// burst allowance.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request under key may proceed, consuming one
// token if so.
func (l *Limiter) Allow(key string) bool {
	return l.limiterFor(key).Allow()
}

func (l *Limiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Middleware rejects requests exceeding the per-host limit with 429,
// keying each bucket on the request's Host.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r.Host) {
			apperrors.Handle(w, r, apperrors.New(apperrors.KindScriptRuntime, "rate limit exceeded", http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}
