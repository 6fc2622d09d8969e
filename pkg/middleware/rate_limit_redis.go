package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tiereddocs/tiereddocs/backend/pkg/logger"
	"github.com/tiereddocs/tiereddocs/backend/pkg/metrics"
)

// RedisRateLimitMiddleware provides a coarse fixed-window Redis-backed limiter keyed by client IP.
// Algorithm: INCR a per-window key and compare against allowed = floor(rps*windowSeconds)+burst.
// All replicas sharing the Redis instance share the budget.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowedPerWindow := int(rps*float64(windowSeconds)) + burst
	return func(c *gin.Context) {
		bucket := time.Now().Unix() / int64(windowSeconds)
		redisKey := fmt.Sprintf("rl:%s:%d", clientKey(c), bucket)

		ctx := c.Request.Context()
		cnt, err := client.Incr(ctx, redisKey).Result()
		if err != nil {
			logger.Errorf("rate limit check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"message":    "Operation failed",
				"error":      "Rate limit check failed",
				"statusCode": http.StatusInternalServerError,
			})
			return
		}
		if cnt == 1 {
			_ = client.Expire(ctx, redisKey, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		if int(cnt) > allowedPerWindow {
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			rejectRateLimited(c, fmt.Sprintf("%d", windowSeconds))
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
