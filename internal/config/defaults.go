package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultKafka = Kafka{
	GroupID:       "courier-dispatch-worker",
	DispatchTopic: "dispatch.events",
	HistoryTopic:  "order.history",
}

var defaultGeocoder = Geocoder{
	Timeout:     2 * time.Second,
	MaxAttempts: 3,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    time.Second,
	Fallback:    Point{Lat: 55.7558, Lng: 37.6173},
}

var defaultRoute = Route{
	AverageSpeedKmh: 25,
	DwellMinutes:    7,
}

var defaultDelivery = Delivery{
	LateAfter:        30 * time.Minute,
	OperationTimeout: 3 * time.Second,
}

var defaultPolling = Polling{
	OffersInterval:   3 * time.Second,
	MessagesInterval: 5 * time.Second,
	Timeout:          2 * time.Second,
	OfferLimit:       20,
}

var defaultAnimation = Animation{
	Min:   500 * time.Millisecond,
	Max:   3 * time.Second,
	Frame: 16 * time.Millisecond,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       10,
	Burst:      20,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

const defaultQueueNamespace = "courier-dispatch"

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default Kafka settings. Brokers are empty, which disables Kafka.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultGeocoder returns the default geocoder settings.
func DefaultGeocoder() Geocoder {
	return defaultGeocoder
}

// DefaultRoute returns the default route planning settings.
func DefaultRoute() Route {
	return defaultRoute
}

// DefaultDelivery returns the default delivery settings.
func DefaultDelivery() Delivery {
	return defaultDelivery
}

// DefaultPolling returns the default polling settings.
func DefaultPolling() Polling {
	return defaultPolling
}

// DefaultAnimation returns the default animation settings.
func DefaultAnimation() Animation {
	return defaultAnimation
}

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultQueueNamespace returns the default key prefix of persisted notification queues.
func DefaultQueueNamespace() string {
	return defaultQueueNamespace
}
