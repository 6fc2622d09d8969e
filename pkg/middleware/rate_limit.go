package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tiereddocs/tiereddocs/backend/pkg/metrics"
)

// limiterStore keeps one token bucket per client key.
type limiterStore struct {
	limiters sync.Map // map[string]*rate.Limiter
	rps      float64
	burst    int
}

// get returns (and lazily creates) the limiter for key
func (s *limiterStore) get(key string) *rate.Limiter {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := s.limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(s.rps), s.burst))
	return v.(*rate.Limiter)
}

// clientKey identifies the caller by client IP.
func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func rejectRateLimited(c *gin.Context, retryAfter string) {
	c.Header("Retry-After", retryAfter)
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success":    false,
		"message":    "Operation failed",
		"error":      "Rate limit exceeded",
		"path":       c.Request.URL.RequestURI(),
		"method":     c.Request.Method,
		"statusCode": http.StatusTooManyRequests,
	})
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket limit per client IP.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := &limiterStore{rps: rps, burst: burst}
	return func(c *gin.Context) {
		if !store.get(clientKey(c)).Allow() {
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			rejectRateLimited(c, "1")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
