package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/middleware"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/http/pprofserver"
	"courier-dispatch/internal/http/router"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/service/session"
	"courier-dispatch/internal/transport/ws"
)

func registerHTTP(container *dig.Container) error {
	if err := provideAll(container,
		handlers.New,
		handlers.NewCourierUsecase,
		handlers.NewCourierHandler,
		handlers.NewLifecycleUsecase,
		handlers.NewOrderHandler,
		handlers.NewRoutePlanner,
		handlers.NewRouteHandler,
		newSessionHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		newServer,
	); err != nil {
		return err
	}
	return container.Provide(newPprofServer, dig.Name("pprof_server"))
}

func newSessionHandler(logger logx.Logger, reg *session.Registry, hub *ws.Hub, cfg *config.Config) *handlers.SessionHandler {
	return handlers.NewSessionHandler(logger, handlers.NewSessionUsecase(reg), hub, cfg.TrackOrigins)
}

type routerIn struct {
	dig.In

	Logger    logx.Logger
	Gatherer  prometheus.Gatherer
	HTTP      *metrics.HTTP
	RateLimit *ratelimit.Middleware
	Base      *handlers.Handlers
	Couriers  *handlers.CourierHandler
	Orders    *handlers.OrderHandler
	Routes    *handlers.RouteHandler
	Sessions  *handlers.SessionHandler
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Base:          in.Base,
		Couriers:      in.Couriers,
		Orders:        in.Orders,
		Routes:        in.Routes,
		Sessions:      in.Sessions,
		Observability: middleware.Observability(in.Logger, in.HTTP),
		RateLimit:     in.RateLimit.Handler(),
		Metrics:       promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{}),
	})
}

// newServer has no WriteTimeout for the track stream; other routes are bounded by router.RequestTimeout.
func newServer(cfg *config.Config, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// newPprofServer returns nil when PPROF_ADDR is empty.
func newPprofServer(cfg *config.Config) *http.Server {
	return pprofserver.New(pprofserver.Config{
		Addr: cfg.Pprof.Addr,
		User: cfg.Pprof.User,
		Pass: cfg.Pprof.Pass,
	})
}

func newRateLimitClock() ratelimit.Clock {
	return ratelimit.RealClock{}
}

// newRateLimiter shares limits across instances through Redis when it is configured.
func newRateLimiter(cfg *config.Config, clock ratelimit.Clock, client redis.UniversalClient, logger logx.Logger) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.NopLimiter{}
	}
	if client != nil {
		return ratelimit.NewRedisLimiter(client, rl.Burst, rl.Window(), logger)
	}
	return ratelimit.NewTokenBucketPerWindow(clock, rl.Burst, rl.Window(), rl.TTL, rl.MaxBuckets)
}

type rateLimitIn struct {
	dig.In
	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter)
}
