package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/logger"
	pnet "kydu/internal/platform/net"

	"golang.org/x/time/rate"
)

// RateLimitConfig is a per user token bucket
type RateLimitConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one bucket per authenticated user; idle buckets are swept
type RateLimiter struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*userLimiter
	stop     chan struct{}
	once     sync.Once
}

// NewRateLimiter starts the sweeper; call Stop on shutdown
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{cfg: cfg, limiters: map[string]*userLimiter{}, stop: make(chan struct{})}
	go rl.sweep()
	return rl
}

// Stop ends the sweeper
func (rl *RateLimiter) Stop() { rl.once.Do(func() { close(rl.stop) }) }

// Len reports the number of tracked users
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) get(userID string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.cfg.Rate, rl.cfg.Burst)}
		rl.limiters[userID] = ul
	}
	ul.lastAccess = now
	return ul.limiter
}

// Middleware must run after Auth; anonymous requests pass through
func (rl *RateLimiter) Middleware(write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := pnet.UserID(r.Context())
			if uid == "" || rl.get(uid, time.Now()).Allow() {
				next.ServeHTTP(w, r)
				return
			}
			logger.C(r.Context()).Warn().Str("user_id", uid).Msg("rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			status, body := pnet.Error(perr.TooManyRequestsf("too many requests"), pnet.RequestID(r.Context()))
			write(w, status, body)
		})
	}
}

func (rl *RateLimiter) retryAfter() int {
	if rl.cfg.Rate <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(rl.cfg.Rate))))
}

func (rl *RateLimiter) sweep() {
	t := time.NewTicker(rl.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			rl.evictIdle(now)
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	ttl := 2 * rl.cfg.CleanupInterval
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.limiters, id)
		}
	}
}
