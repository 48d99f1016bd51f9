package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	"courier-dispatch/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter `name:"rate_limit_exceeded_total"`
	GatewayRetriesTotal    prometheus.Counter `name:"gateway_retries_total"`
	StaleFixesTotal        prometheus.Counter `name:"stale_fixes_total"`
	PollStaleTotal         *prometheus.CounterVec
	Lifecycle              *metrics.Lifecycle
	Queue                  *metrics.Queue
	HTTP                   *metrics.HTTP
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg prometheus.Registerer) (metricsOut, error) {
	var (
		out metricsOut
		err error
	)
	if out.RateLimitExceededTotal, err = registerOrExisting(reg, "rate_limit_exceeded_total", metrics.NewRateLimitExceededTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.GatewayRetriesTotal, err = registerOrExisting(reg, "gateway_retries_total", metrics.NewGatewayRetriesTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.StaleFixesTotal, err = registerOrExisting(reg, "tracking_stale_fixes_total", metrics.NewStaleFixesTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.PollStaleTotal, err = registerOrExisting(reg, "poll_stale_responses_total", metrics.NewPollStaleTotal()); err != nil {
		return metricsOut{}, err
	}

	out.Lifecycle = metrics.NewLifecycle()
	out.Queue = metrics.NewQueue()
	out.HTTP = metrics.NewHTTP()
	groups := map[string][]prometheus.Collector{
		"lifecycle": out.Lifecycle.Collectors(),
		"queue":     out.Queue.Collectors(),
		"http":      out.HTTP.Collectors(),
	}
	for name, cs := range groups {
		for _, c := range cs {
			if err := reg.Register(c); err != nil {
				return metricsOut{}, fmt.Errorf("register %s metrics: %w", name, err)
			}
		}
	}
	return out, nil
}

// registerOrExisting returns the already registered collector when one with the same
// descriptor exists.
func registerOrExisting[T prometheus.Collector](reg prometheus.Registerer, name string, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("register %s: %w", name, err)
}
