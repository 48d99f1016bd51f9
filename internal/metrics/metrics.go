package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}

// Lifecycle groups the delivery state machine collectors.
type Lifecycle struct {
	Transitions    *prometheus.CounterVec
	CodeMismatches prometheus.Counter
}

// NewLifecycle returns unregistered lifecycle collectors.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_transitions_total",
			Help: "Delivery lifecycle events by event and outcome",
		}, []string{"event", "outcome"}),
		CodeMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delivery_code_mismatches_total",
			Help: "Pickup and delivery codes that did not match",
		}),
	}
}

// Collectors returns every collector for registration.
func (l *Lifecycle) Collectors() []prometheus.Collector {
	return []prometheus.Collector{l.Transitions, l.CodeMismatches}
}

// Queue groups the notification queue collectors.
type Queue struct {
	Pending  prometheus.Gauge
	Resolved *prometheus.CounterVec
	Resets   prometheus.Counter
}

// NewQueue returns unregistered queue collectors.
func NewQueue() *Queue {
	return &Queue{
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notification_queue_pending",
			Help: "Unresolved notification items across loaded courier sessions",
		}),
		Resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_resolved_total",
			Help: "Resolved notification items by kind and action",
		}, []string{"kind", "action"}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_queue_resets_total",
			Help: "Queues reset because persisted data could not be decoded",
		}),
	}
}

// Collectors returns every collector for registration.
func (q *Queue) Collectors() []prometheus.Collector {
	return []prometheus.Collector{q.Pending, q.Resolved, q.Resets}
}

// NewStaleFixesTotal counts position fixes dropped for being older than the last applied one.
func NewStaleFixesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_stale_fixes_total",
		Help: "Position fixes discarded because a newer fix was already applied",
	})
}

// NewPollStaleTotal counts poll responses discarded because a fresher one was applied.
func NewPollStaleTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_stale_responses_total",
		Help: "Poll responses discarded because a fresher response was already applied",
	}, []string{"poller"})
}

// HTTP groups request collectors.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP returns unregistered HTTP collectors.
func NewHTTP() *HTTP {
	return &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Collectors returns every collector for registration.
func (h *HTTP) Collectors() []prometheus.Collector {
	return []prometheus.Collector{h.Requests, h.Duration}
}
