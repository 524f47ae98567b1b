package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ClientLimiter hands out one token bucket per client IP. Idle buckets
// expire from the cache.
type ClientLimiter struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	limiters *cache.Cache
}

func NewClientLimiter(rps float64, burst int, idle, cleanup time.Duration) *ClientLimiter {
	return &ClientLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: cache.New(idle, cleanup),
	}
}

func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
	}
	// refresh expiry on every hit
	l.limiters.SetDefault(key, limiter)
	l.mu.Unlock()

	return limiter.(*rate.Limiter).Allow()
}

func RateLimitMiddleware(l *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
