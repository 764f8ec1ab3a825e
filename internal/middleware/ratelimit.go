package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is a fixed-window request counter in Redis.
type Limiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

// NewLimiter allows limit requests per window for each key.
func NewLimiter(rdb redis.Cmdable, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window, prefix: "ratelimit"}
}

// Allow counts one request against key. When the limit is exceeded it
// returns false and the time until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.prefix + ":" + key

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("incr %s: %w", k, err)
	}
	// The first hit opens the window.
	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("expire %s: %w", k, err)
		}
	}

	if count <= int64(l.limit) {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl, nil
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit limits requests per client address and route name. A nil
// limiter disables limiting. Redis failures let the request through.
func RateLimit(l *Limiter, route string, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry, err := l.Allow(r.Context(), route+":"+clientAddr(r))
			if err != nil {
				logger.Warnw("Rate limiter unavailable, allowing request", "route", route, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				seconds := int(math.Ceil(retry.Seconds()))
				w.Header().Set("Retry-After", fmt.Sprint(seconds))
				writeError(w, http.StatusTooManyRequests, map[string]interface{}{
					"success":     false,
					"error":       "Rate limit exceeded",
					"retry_after": seconds,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
