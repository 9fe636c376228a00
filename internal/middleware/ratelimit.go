package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter is per-key token-bucket admission control for the submission
// endpoint. It runs strictly before the saga's credit reservation: it guards
// against abuse volume, not against double-spend (that is the ledger's job).
//
// Counters live in process memory. Running more than one instance requires
// moving them to a shared store; a single limiter in front of the fleet is
// the deployment assumption here.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter allows burst requests immediately and refills at
// requestsPerMinute.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(requestsPerMinute) / 60),
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Cap the map so a scan across many keys cannot grow it unbounded.
	if len(rl.limiters) > 10000 {
		rl.limiters = make(map[string]*rate.Limiter)
	}

	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Check reports whether a request for key is admitted now. When it is not,
// retryAfterSeconds is the wait until the next token, rounded up.
func (rl *RateLimiter) Check(key string) (allowed bool, retryAfterSeconds int) {
	res := rl.getLimiter(key).Reserve()
	if !res.OK() {
		return false, 1
	}
	delay := res.Delay()
	if delay == 0 {
		return true, 0
	}
	res.Cancel()
	return false, int(math.Ceil(delay.Seconds()))
}

// Handler applies the limiter keyed by the authenticated account, falling
// back to the remote address. Rejections carry a Retry-After header.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if acc := AccountFromCtx(r.Context()); acc != nil {
			key = acc.ID.String()
		}

		allowed, retryAfter := rl.Check(key)
		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
