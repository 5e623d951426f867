package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	Message           string
}

// DefaultRateLimitConfig returns the general API limit
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		KeyPrefix:         "wiki:ratelimit:",
		Message:           "Too many requests, please try again later",
	}
}

// AuthRateLimitConfig is the stricter limit for login, register and invitation checks
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 20,
		KeyPrefix:         "wiki:ratelimit:auth:",
		Message:           "Too many attempts, please try again later",
	}
}

// rateLimitScript is an atomic sliding window over a sorted set
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local reset_at = 0
if #oldest >= 2 then
    reset_at = tonumber(oldest[2]) + window
end
return {0, 0, reset_at}
`)

const rateWindow = time.Minute

// maxLocalLimiters bounds the in-process limiter map; it is reset when exceeded
const maxLocalLimiters = 10000

// RateLimit limits requests per client IP. It uses Redis when available so the
// limit is shared across instances, and a per-process token bucket otherwise.
// Redis errors fail open.
func RateLimit(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	local := newLocalLimiters(cfg.RequestsPerMinute)

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + c.ClientIP()
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))

		if redisClient == nil {
			if !local.allow(key) {
				c.Header("Retry-After", "1")
				rejectRateLimited(c, cfg)
				return
			}
			c.Next()
			return
		}

		now := time.Now().UnixMilli()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 200*time.Millisecond)
		result, err := rateLimitScript.Run(ctx, redisClient, []string{key},
			cfg.RequestsPerMinute, rateWindow.Milliseconds(), now,
		).Int64Slice()
		cancel()
		if err != nil || len(result) != 3 {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result[1], 10))
		if result[0] != 1 {
			retryAfter := (result[2] - now) / 1000
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			rejectRateLimited(c, cfg)
			return
		}
		c.Next()
	}
}

func rejectRateLimited(c *gin.Context, cfg RateLimitConfig) {
	common.ErrorResponse(c, http.StatusTooManyRequests, cfg.Message, nil)
	c.Abort()
}

// localLimiters holds one token bucket per key
type localLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLocalLimiters(perMinute int) *localLimiters {
	if perMinute < 1 {
		perMinute = 1
	}
	return &localLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(rateWindow / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *localLimiters) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxLocalLimiters {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
