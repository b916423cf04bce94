package restapi

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"churnboard.telecomx.org/internal/models"
	"churnboard.telecomx.org/internal/utils"
)

const (
	limiterIdleTimeout = 10 * time.Minute
	cleanupInterval    = 5 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits /api/ requests per client IP address.
type RateLimitMiddleware struct {
	limiters  map[string]*clientLimiter
	mu        sync.Mutex
	rateLimit rate.Limit
	burstSize int
	now       func() time.Time
	done      chan struct{}
	stopOnce  sync.Once
}

// NewRateLimitMiddleware allows ratePerSecond sustained requests per client
// with bursts of up to burst. A non-positive rate disables limiting.
func NewRateLimitMiddleware(ratePerSecond float64, burst int) *RateLimitMiddleware {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	rl := &RateLimitMiddleware{
		limiters:  make(map[string]*clientLimiter),
		rateLimit: limit,
		burstSize: burst,
		now:       time.Now,
		done:      make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimitMiddleware) getLimiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.rateLimit, rl.burstSize)}
		rl.limiters[client] = entry
	}
	entry.lastSeen = rl.now()
	return entry.limiter
}

func (rl *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.rateLimit == rate.Inf || !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.getLimiter(utils.ClientIP(r)).Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter is the time until one token is available again, rounded up to
// whole seconds.
func (rl *RateLimitMiddleware) retryAfter() int {
	seconds := math.Ceil(1 / float64(rl.rateLimit))
	if seconds < 1 {
		return 1
	}
	return int(seconds)
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(models.NewErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later"))
}

func (rl *RateLimitMiddleware) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

// cleanup drops limiters of clients idle for longer than limiterIdleTimeout.
func (rl *RateLimitMiddleware) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-limiterIdleTimeout)
	for client, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, client)
		}
	}
}

func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}
