package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware counts requests per path and caller in fixed Redis windows.
// Without a Redis client it falls back to an in-process token bucket per caller.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if redisClient == nil {
		return localRateLimit(limit, window)
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), callerID(c))

		ctx := c.Request.Context()
		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}

		if count == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

func localRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiters := newLocalLimiters(limit, window)

	return func(c *gin.Context) {
		key := c.FullPath() + ":" + callerID(c)

		if !limiters.allow(key, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiters keeps one token bucket per caller. A bucket idle for a whole
// window has refilled, so it is dropped and recreated on the next request.
type localLimiters struct {
	mu        sync.Mutex
	entries   map[string]*localEntry
	every     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
}

func newLocalLimiters(limit int, window time.Duration) *localLimiters {
	return &localLimiters{
		entries: make(map[string]*localEntry),
		every:   rate.Limit(float64(limit) / window.Seconds()),
		burst:   limit,
		window:  window,
	}
}

func (l *localLimiters) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) >= l.window {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *localLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func callerID(c *gin.Context) string {
	if userID := c.GetString("user_id"); userID != "" {
		return userID
	}
	return c.ClientIP()
}
