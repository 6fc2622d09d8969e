package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiereddocs/tiereddocs/backend/internal/document/handler"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// Health serves liveness, readiness and the enveloped health/ping endpoints.
type Health struct {
	checks  map[string]Check
	started time.Time
	timeout time.Duration
}

// NewHealth returns a Health running checks on every readiness request.
func NewHealth(checks map[string]Check) *Health {
	return &Health{checks: checks, started: time.Now(), timeout: 2 * time.Second}
}

// Register mounts /health and /ready on r and health, health/ping on api.
func (h *Health) Register(r *gin.Engine, api *gin.RouterGroup) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", h.ready)
	api.GET("/health", h.check)
	api.GET("/health/ping", h.ping)
}

type depStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// run executes every check and splits results into up and down.
func (h *Health) run(ctx context.Context) (up, down map[string]depStatus) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	up, down = map[string]depStatus{}, map[string]depStatus{}
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			down[name] = depStatus{Status: "down", Message: err.Error()}
			continue
		}
		up[name] = depStatus{Status: "up"}
	}
	return up, down
}

func (h *Health) ready(c *gin.Context) {
	up, down := h.run(c.Request.Context())
	deps := map[string]bool{}
	for name := range up {
		deps[name] = true
	}
	for name := range down {
		deps[name] = false
	}
	uptime := time.Since(h.started).String()
	if len(down) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
}

func (h *Health) check(c *gin.Context) {
	up, down := h.run(c.Request.Context())
	details := map[string]depStatus{}
	for k, v := range up {
		details[k] = v
	}
	for k, v := range down {
		details[k] = v
	}
	status, code, msg := "ok", http.StatusOK, "Health check completed successfully"
	if len(down) > 0 {
		status, code, msg = "error", http.StatusServiceUnavailable, "Health check failed"
	}
	handler.Success(c, code, msg, gin.H{
		"status":  status,
		"info":    up,
		"error":   down,
		"details": details,
	})
}

func (h *Health) ping(c *gin.Context) {
	handler.Success(c, http.StatusOK, "Ping successful", gin.H{
		"message":   "pong",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
