package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores service and worker settings.
type Config struct {
	Port         int
	DB           DB
	Redis        Redis
	Kafka        Kafka
	Geocoder     Geocoder
	Route        Route
	Delivery     Delivery
	Polling      Polling
	Animation    Animation
	RateLimit    RateLimit
	Pprof        Pprof
	TrackOrigins []string
	// QueueNamespace prefixes persisted notification queue keys.
	QueueNamespace string
}

// DB stores PostgreSQL connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns the connection string for pgx.
func (db DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		db.User, db.Pass, net.JoinHostPort(db.Host, db.Port), db.Name)
}

// Redis stores the notification queue storage settings. Empty Addr keeps queues in memory.
type Redis struct {
	Addr     string
	DB       int
	Password string
}

// Kafka stores broker settings. No brokers disables both the consumer and the history producer.
type Kafka struct {
	Brokers       []string
	GroupID       string
	DispatchTopic string
	HistoryTopic  string
}

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64
	Lng float64
}

// Geocoder stores geocoding gateway settings. Empty BaseURL disables the HTTP geocoder.
type Geocoder struct {
	BaseURL     string
	APIKey      string
	Country     string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Fallback is the reference point of approximate coordinates.
	Fallback Point
}

// Route stores route estimate settings.
type Route struct {
	AverageSpeedKmh float64
	DwellMinutes    float64
}

// Delivery stores lifecycle settings.
type Delivery struct {
	LateAfter        time.Duration
	OperationTimeout time.Duration
}

// Polling stores courier session poller settings.
type Polling struct {
	OffersInterval   time.Duration
	MessagesInterval time.Duration
	Timeout          time.Duration
	OfferLimit       int
}

// Animation stores marker animation bounds.
type Animation struct {
	Min   time.Duration
	Max   time.Duration
	Frame time.Duration
}

// RateLimit stores API rate limit settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Window is the period in which Burst requests are refilled at Rate.
func (rl RateLimit) Window() time.Duration {
	if rl.Rate <= 0 || rl.Burst <= 0 {
		return time.Second
	}
	return time.Duration(float64(rl.Burst) / rl.Rate * float64(time.Second))
}

// Pprof stores debug server settings. Empty Addr disables the server.
type Pprof struct {
	Addr string
	User string
	Pass string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	fs := pflag.CommandLine
	// test binaries and wrappers may pass flags we do not own
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.Pprof.Addr, "pprof-addr", cfg.Pprof.Addr, "pprof listen address, empty disables it")
	fs.StringSliceVar(&cfg.Kafka.Brokers, "kafka-brokers", cfg.Kafka.Brokers, "kafka bootstrap brokers")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	e := &env{}
	cfg := &Config{
		Port: e.int("PORT", DefaultPort()),
		DB: DB{
			Host: e.str("POSTGRES_HOST", defaultDB.Host),
			Port: e.str("POSTGRES_PORT", defaultDB.Port),
			User: e.str("POSTGRES_USER", defaultDB.User),
			Pass: e.str("POSTGRES_PASSWORD", defaultDB.Pass),
			Name: e.str("POSTGRES_DB", defaultDB.Name),
		},
		Redis: Redis{
			Addr:     e.str("REDIS_ADDR", ""),
			DB:       e.int("REDIS_DB", 0),
			Password: e.str("REDIS_PASSWORD", ""),
		},
		Kafka: Kafka{
			Brokers:       e.list("KAFKA_BROKERS"),
			GroupID:       e.str("KAFKA_GROUP_ID", defaultKafka.GroupID),
			DispatchTopic: e.str("KAFKA_DISPATCH_TOPIC", defaultKafka.DispatchTopic),
			HistoryTopic:  e.str("KAFKA_HISTORY_TOPIC", defaultKafka.HistoryTopic),
		},
		Geocoder: Geocoder{
			BaseURL:     e.str("GEOCODER_BASE_URL", ""),
			APIKey:      e.str("GEOCODER_API_KEY", ""),
			Country:     e.str("GEOCODER_COUNTRY", ""),
			Timeout:     e.duration("GEOCODER_TIMEOUT", defaultGeocoder.Timeout),
			MaxAttempts: e.int("GEOCODER_MAX_ATTEMPTS", defaultGeocoder.MaxAttempts),
			BaseDelay:   e.duration("GEOCODER_BASE_DELAY", defaultGeocoder.BaseDelay),
			MaxDelay:    e.duration("GEOCODER_MAX_DELAY", defaultGeocoder.MaxDelay),
			Fallback: Point{
				Lat: e.float("GEOCODER_FALLBACK_LAT", defaultGeocoder.Fallback.Lat),
				Lng: e.float("GEOCODER_FALLBACK_LNG", defaultGeocoder.Fallback.Lng),
			},
		},
		Route: Route{
			AverageSpeedKmh: e.float("ROUTE_AVG_SPEED_KMH", defaultRoute.AverageSpeedKmh),
			DwellMinutes:    e.float("ROUTE_DWELL_MINUTES", defaultRoute.DwellMinutes),
		},
		Delivery: Delivery{
			LateAfter:        e.duration("DELIVERY_LATE_AFTER", defaultDelivery.LateAfter),
			OperationTimeout: e.duration("DELIVERY_OPERATION_TIMEOUT", defaultDelivery.OperationTimeout),
		},
		Polling: Polling{
			OffersInterval:   e.duration("POLL_OFFERS_INTERVAL", defaultPolling.OffersInterval),
			MessagesInterval: e.duration("POLL_MESSAGES_INTERVAL", defaultPolling.MessagesInterval),
			Timeout:          e.duration("POLL_TIMEOUT", defaultPolling.Timeout),
			OfferLimit:       e.int("POLL_OFFER_LIMIT", defaultPolling.OfferLimit),
		},
		Animation: Animation{
			Min:   e.duration("ANIMATION_MIN", defaultAnimation.Min),
			Max:   e.duration("ANIMATION_MAX", defaultAnimation.Max),
			Frame: e.duration("ANIMATION_FRAME", defaultAnimation.Frame),
		},
		RateLimit: RateLimit{
			Enabled:    e.bool("RATE_LIMIT_ENABLED", defaultRateLimit.Enabled),
			Rate:       e.float("RATE_LIMIT_RATE", defaultRateLimit.Rate),
			Burst:      e.int("RATE_LIMIT_BURST", defaultRateLimit.Burst),
			TTL:        e.duration("RATE_LIMIT_TTL", defaultRateLimit.TTL),
			MaxBuckets: e.int("RATE_LIMIT_MAX_BUCKETS", defaultRateLimit.MaxBuckets),
		},
		Pprof: Pprof{
			Addr: e.str("PPROF_ADDR", ""),
			User: e.str("PPROF_USER", ""),
			Pass: e.str("PPROF_PASS", ""),
		},
		TrackOrigins:   e.list("TRACK_ALLOWED_ORIGINS"),
		QueueNamespace: e.str("QUEUE_NAMESPACE", DefaultQueueNamespace()),
	}
	if e.err != nil {
		return nil, e.err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid postgres port: %q", c.DB.Port)
	}
	if c.Animation.Min > c.Animation.Max {
		return fmt.Errorf("animation min %s exceeds max %s", c.Animation.Min, c.Animation.Max)
	}
	if c.Route.AverageSpeedKmh <= 0 {
		return fmt.Errorf("invalid average speed: %v", c.Route.AverageSpeedKmh)
	}
	if c.Route.DwellMinutes < 0 {
		return fmt.Errorf("invalid dwell minutes: %v", c.Route.DwellMinutes)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid rate limit: rate=%v burst=%d", c.RateLimit.Rate, c.RateLimit.Burst)
	}
	return nil
}
