package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/gateway/geocoder"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/service/courier"
	"courier-dispatch/internal/service/lifecycle"
	"courier-dispatch/internal/service/route"
	"courier-dispatch/internal/service/session"
	"courier-dispatch/internal/service/tracking"
	"courier-dispatch/internal/storage/kv"
	"courier-dispatch/internal/transport/kafka"
	"courier-dispatch/internal/transport/ws"
)

func registerStorage(container *dig.Container) error {
	return provideAll(container,
		newRedisClient,
		newQueueStore,
	)
}

// newRedisClient returns nil when no address is configured.
func newRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
}

func newQueueStore(client redis.UniversalClient, logger logx.Logger) kv.Store {
	if client == nil {
		logger.Warn("REDIS_ADDR is empty, notification queues are kept in memory")
		return kv.NewMemoryStore()
	}
	return kv.NewRedisStore(client)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		repository.NewCourierRepo,
		repository.NewOrderRepo,
		repository.NewMessageRepo,
		repository.NewDispatchRepo,
		repository.NewGeocodeCache,
		func(repo *repository.CourierRepo, logger logx.Logger, cfg *config.Config) *courier.Service {
			return courier.NewService(repo, logger, cfg.Delivery.OperationTimeout)
		},
		newHistoryProducer,
		newMachine,
		newGeocoder,
		newPlanner,
		ws.NewHub,
		newSessions,
	)
}

func newHistoryProducer(cfg *config.Config, logger logx.Logger) (*kafka.HistoryProducer, error) {
	p, err := kafka.NewHistoryProducer(cfg.Kafka.Brokers, cfg.Kafka.HistoryTopic)
	if err != nil {
		return nil, err
	}
	if p == nil {
		logger.Info("kafka brokers not configured, lifecycle history is not published")
	}
	return p, nil
}

func newMachine(
	tx *repository.DispatchRepo,
	orders *repository.OrderRepo,
	history *kafka.HistoryProducer,
	m *metrics.Lifecycle,
	logger logx.Logger,
	cfg *config.Config,
) *lifecycle.Machine {
	var publisher lifecycle.HistoryPublisher
	if history != nil {
		publisher = history
	}
	return lifecycle.NewMachine(tx, orders, publisher, m, logger, lifecycle.Config{
		LateAfter:        cfg.Delivery.LateAfter,
		OperationTimeout: cfg.Delivery.OperationTimeout,
	})
}

type geocoderIn struct {
	dig.In

	Config  *config.Config
	Logger  logx.Logger
	Cache   *repository.GeocodeCache
	Retries prometheus.Counter `name:"gateway_retries_total"`
}

// newGeocoder chains client, retries and the PostgreSQL cache. It returns nil without a base URL.
func newGeocoder(in geocoderIn) route.Geocoder {
	gc := in.Config.Geocoder
	client := geocoder.NewClient(geocoder.ClientConfig{
		BaseURL: gc.BaseURL,
		APIKey:  gc.APIKey,
		Country: gc.Country,
		Timeout: gc.Timeout,
	})
	if client == nil {
		in.Logger.Info("geocoder not configured, missing coordinates use the fallback")
		return nil
	}
	retrying := geocoder.NewRetrying(client, in.Logger, in.Retries, geocoder.RetryConfig{
		MaxAttempts: gc.MaxAttempts,
		BaseDelay:   gc.BaseDelay,
		MaxDelay:    gc.MaxDelay,
	})
	return geocoder.NewCached(retrying, in.Cache, in.Logger)
}

func newPlanner(orders *repository.OrderRepo, gc route.Geocoder, logger logx.Logger, cfg *config.Config) *route.Planner {
	fallback := geo.NewFallback(domain.Coordinates{Lat: cfg.Geocoder.Fallback.Lat, Lng: cfg.Geocoder.Fallback.Lng})
	optimizer := route.NewOptimizer(route.Config{
		AverageSpeedKmh: cfg.Route.AverageSpeedKmh,
		DwellMinutes:    cfg.Route.DwellMinutes,
	}, geo.DistanceKm)
	return route.NewPlanner(orders, route.NewResolver(gc, fallback, logger), optimizer, cfg.Delivery.OperationTimeout)
}

type sessionsIn struct {
	dig.In

	Config    *config.Config
	Logger    logx.Logger
	Couriers  *repository.CourierRepo
	Orders    *repository.OrderRepo
	Messages  *repository.MessageRepo
	Lifecycle *lifecycle.Machine
	Store     kv.Store
	Hub       *ws.Hub
	Queue     *metrics.Queue
	Stale     prometheus.Counter `name:"stale_fixes_total"`
	PollStale *prometheus.CounterVec
}

func newSessions(in sessionsIn) *session.Registry {
	cfg := in.Config
	return session.NewRegistry(session.Config{
		OffersInterval:   cfg.Polling.OffersInterval,
		MessagesInterval: cfg.Polling.MessagesInterval,
		PollTimeout:      cfg.Polling.Timeout,
		OfferLimit:       cfg.Polling.OfferLimit,
		Namespace:        cfg.QueueNamespace,
		Animation: tracking.AnimatorConfig{
			Frame:       cfg.Animation.Frame,
			MinDuration: cfg.Animation.Min,
			MaxDuration: cfg.Animation.Max,
		},
	}, session.Deps{
		Couriers:  in.Couriers,
		Offers:    in.Orders,
		Messages:  in.Messages,
		Acks:      in.Messages,
		Lifecycle: in.Lifecycle,
		Positions: in.Couriers,
		Store:     in.Store,
		Outlet:    in.Hub,
		Queue:     in.Queue,
		Stale:     in.Stale,
		PollStale: in.PollStale,
		Logger:    in.Logger,
	})
}
