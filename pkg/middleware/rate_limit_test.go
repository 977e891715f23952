package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(mw gin.HandlerFunc) *gin.Engine {
	router := setupTestRouter()
	router.Use(mw)
	router.POST("/likes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func hit(router *gin.Engine) int {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/likes", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := limitedRouter(RateLimitMiddleware(client, 2, time.Minute))

	assert.Equal(t, http.StatusOK, hit(router))
	assert.Equal(t, http.StatusOK, hit(router))
	assert.Equal(t, http.StatusTooManyRequests, hit(router))

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, hit(router))
}

func TestRateLimitMiddleware_LocalFallback(t *testing.T) {
	router := limitedRouter(RateLimitMiddleware(nil, 2, time.Hour))

	assert.Equal(t, http.StatusOK, hit(router))
	assert.Equal(t, http.StatusOK, hit(router))
	assert.Equal(t, http.StatusTooManyRequests, hit(router))
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	router := limitedRouter(RateLimitMiddleware(nil, 0, time.Minute))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(router))
	}
}

func TestLocalLimiters_EvictsIdleCallers(t *testing.T) {
	limiters := newLocalLimiters(1, time.Minute)
	now := time.Now()

	assert.True(t, limiters.allow("a", now))
	assert.False(t, limiters.allow("a", now))
	assert.True(t, limiters.allow("b", now.Add(30*time.Second)))
	assert.Equal(t, 2, limiters.size())

	later := now.Add(2 * time.Minute)
	assert.True(t, limiters.allow("c", later))
	assert.Equal(t, 1, limiters.size())
	assert.True(t, limiters.allow("a", later))
}

func TestLocalLimiters_LimitAboveWindowNanos(t *testing.T) {
	limiters := newLocalLimiters(10, 5*time.Nanosecond)
	now := time.Now()

	for i := 0; i < 10; i++ {
		assert.True(t, limiters.allow("a", now))
	}
	assert.False(t, limiters.allow("a", now))
}
