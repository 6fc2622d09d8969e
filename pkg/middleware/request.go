package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiereddocs/tiereddocs/backend/pkg/logger"
	"github.com/tiereddocs/tiereddocs/backend/pkg/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "requestId"
)

// RequestID propagates the caller's X-Request-ID or assigns a new UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request and records its latency.
func RequestLogger() gin.HandlerFunc {
	log := logger.For("HTTP")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		line := "%s %s %d - %dms"
		args := []interface{}{c.Request.Method, c.Request.URL.RequestURI(), status, elapsed.Milliseconds()}
		if id := c.GetString(RequestIDKey); id != "" {
			line += " [%s]"
			args = append(args, id)
		}
		if status >= 500 {
			log.Errorf(line, args...)
			return
		}
		log.Infof(line, args...)
	}
}

// CORS sets permissive cross-origin headers and answers preflight requests.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+RequestIDHeader)
		h.Set("Access-Control-Expose-Headers", "Content-Length, "+RequestIDHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
