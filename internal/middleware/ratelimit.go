package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "stockdash/internal/errors"
)

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	handler *apperrors.ErrorHandler
	logger  *slog.Logger

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-client rate limiter
func NewRateLimiter(rps float64, burst int, handler *apperrors.ErrorHandler, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		handler: handler,
		logger:  logger.With(slog.String("component", "rate_limiter")),
		clients: make(map[string]*client),
	}
}

// Handler implements rate limiting middleware
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		limiter := rl.limiter(key)

		if !limiter.Allow() {
			rl.logger.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("client", key),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))

			retry := time.Second
			if rl.rps > 0 {
				retry = time.Duration(float64(time.Second) / float64(rl.rps))
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds()+0.999)))
			rl.handler.HandleError(w, r, apperrors.ErrRateLimitExceeded)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// Evict forgets clients idle for longer than idle and returns how many were
// removed.
func (rl *RateLimiter) Evict(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	removed := 0
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// Run evicts idle clients every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Evict(interval); n > 0 {
				rl.logger.DebugContext(ctx, "evicted idle rate limit clients", slog.Int("count", n))
			}
		}
	}
}

// clientKey identifies the caller by host. RealIP runs earlier in the
// chain, so proxied requests already carry the forwarded address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
