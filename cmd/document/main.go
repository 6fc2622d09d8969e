package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tiereddocs/tiereddocs/backend/handlers"
	"github.com/tiereddocs/tiereddocs/backend/internal/config"
	"github.com/tiereddocs/tiereddocs/backend/internal/document/handler"
	"github.com/tiereddocs/tiereddocs/backend/internal/document/service"
	"github.com/tiereddocs/tiereddocs/backend/pkg/logger"
	"github.com/tiereddocs/tiereddocs/backend/pkg/metrics"
	"github.com/tiereddocs/tiereddocs/backend/pkg/middleware"
)

func main() {
	// LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.Infof("config loaded: store=%s redis=%v rate_limit=%v", cfg.Store.Driver, cfg.Redis.Addr() != "", cfg.RateLimit.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := service.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open document store: %v", err)
	}
	defer closeStore()
	svc := service.New(store)

	checks := map[string]handlers.Check{"store": svc.Ping}

	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis at %s", addr)
		}
		if cfg.RateLimit.UseRedis {
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(cfg, svc, rdb, checks)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("document service listening on %s (prefix %s)", srv.Addr, cfg.Server.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("forced to shutdown: %v", err)
	}
}

func newRouter(cfg *config.Config, svc service.Service, rdb *redis.Client, checks map[string]handlers.Check) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.CORS())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	api := r.Group(cfg.Server.APIPrefix)
	handlers.NewHealth(checks).Register(r, api)
	handlers.RegisterSwagger(r, cfg.Server.APIPrefix)
	handler.RegisterRoutes(api, svc)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
