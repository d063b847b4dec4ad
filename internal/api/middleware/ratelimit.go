package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/schoolmgmt/school-api/internal/api/shared"
	"github.com/schoolmgmt/school-api/internal/redact"
)

// incrWindow increments the counter and starts its window in one step. A
// counter found without a TTL gets one, so no key can outlive its window.
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RateLimiter counts requests per client in fixed Redis-backed windows.
type RateLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	logger *slog.Logger
}

// NewRateLimiter allows limit requests per window for each client. prefix
// namespaces the Redis keys so several limiters can share one instance.
func NewRateLimiter(
	client redis.Cmdable,
	prefix string,
	limit int,
	window time.Duration,
	logger *slog.Logger,
) (*RateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("rate limit and window must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		logger: logger.With(slog.String("component", "rate_limiter")),
	}, nil
}

// Allow records one request for key and reports whether it fits in the
// current window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "ratelimit:" + l.prefix + ":" + key

	count, err := incrWindow.Run(ctx, l.client, []string{k}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	return count <= int64(l.limit), nil
}

// Limit rejects requests over the limit with 429. When Redis is unreachable
// requests are let through.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := l.Allow(r.Context(), clientIP(r))
		if err != nil {
			l.logger.Warn("rate limiter unavailable, allowing request",
				slog.String("path", r.URL.Path),
				slog.String("error", redact.Error(err)))
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has
// already applied any proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
