// file: internal/middleware/rate_limiter.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"letsconnect/internal/cache"
	"letsconnect/internal/config"
	"letsconnect/internal/response"

	"go.uber.org/zap"
)

// RateLimitResult represents the result of rate limit check
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// RateLimiter counts requests per client IP in fixed windows held in the
// cache. The client IP is the peer address unless the peer is a trusted proxy.
type RateLimiter struct {
	cache   cache.Cache
	config  config.RateLimitConfig
	builder *response.Builder
	logger  *zap.Logger
	now     func() time.Time
	trusted trustedProxies
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(c cache.Cache, cfg config.RateLimitConfig, builder *response.Builder, logger *zap.Logger) *RateLimiter {
	if cfg.Requests <= 0 {
		cfg.Requests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		logger.Warn("Ignoring trusted proxies, forwarding headers will not be honoured", zap.Error(err))
		trusted = nil
	}
	return &RateLimiter{
		cache:   c,
		config:  cfg,
		builder: builder,
		logger:  logger,
		now:     time.Now,
		trusted: trusted,
	}
}

// RateLimit rejects clients over their budget with 429. Cache failures let
// the request through.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.config.Enabled || limiter.cache == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r, limiter.trusted)
			result, err := limiter.check(r.Context(), ip)
			if err != nil {
				limiter.logger.Warn("Rate limit check failed, allowing request",
					zap.String("ip", ip),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			limiter.writeRateLimitHeaders(w, result)
			if !result.Allowed {
				limiter.logger.Warn("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
					zap.Int("limit", result.Limit),
					zap.Duration("retry_after", result.RetryAfter),
				)
				limiter.builder.WriteStatus(w, r, http.StatusTooManyRequests, "Too Many Requests, Please Try Again Later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// check counts one request for ip in the current window
func (rl *RateLimiter) check(ctx context.Context, ip string) (*RateLimitResult, error) {
	now := rl.now()
	windowStart := now.Truncate(rl.config.Window)
	key := fmt.Sprintf("ratelimit:%s:%d", ip, windowStart.Unix())

	count, err := rl.cache.Increment(ctx, key, 1, rl.config.Window)
	if err != nil {
		return nil, err
	}

	resetTime := windowStart.Add(rl.config.Window)
	remaining := rl.config.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:    int(count) <= rl.config.Requests,
		Limit:      rl.config.Requests,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: resetTime.Sub(now),
	}, nil
}

func (rl *RateLimiter) writeRateLimitHeaders(w http.ResponseWriter, result *RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
	}
}
