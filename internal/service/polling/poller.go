// Package polling runs fixed-interval pollers that never apply a response older than one already applied.
package polling

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/logx"
)

// FetchFunc loads one snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// ApplyFunc consumes a snapshot. Calls never overlap.
type ApplyFunc[T any] func(ctx context.Context, v T) error

// Config stores poller settings.
type Config struct {
	Interval time.Duration
	// Timeout bounds a single fetch; zero means Interval.
	Timeout time.Duration
}

// Poller fires fetch every Interval without waiting for slow earlier fetches.
// Responses are numbered by issue order and one is applied only if no later-issued response was.
type Poller[T any] struct {
	name   string
	cfg    Config
	fetch  FetchFunc[T]
	apply  ApplyFunc[T]
	stale  *prometheus.CounterVec
	logger logx.Logger

	issued atomic.Uint64
	wg     sync.WaitGroup

	mu      sync.Mutex
	applied uint64
}

// New creates a Poller. stale may be nil.
func New[T any](name string, cfg Config, fetch FetchFunc[T], apply ApplyFunc[T], stale *prometheus.CounterVec, logger logx.Logger) *Poller[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Poller[T]{
		name:   name,
		cfg:    cfg,
		fetch:  fetch,
		apply:  apply,
		stale:  stale,
		logger: logger.With(logx.String("poller", name)),
	}
}

// Name returns the poller name.
func (p *Poller[T]) Name() string { return p.name }

// Run polls immediately and then on every tick until ctx is done. It waits for in-flight polls before returning.
func (p *Poller[T]) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	defer p.wg.Wait()

	p.spawn(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.spawn(ctx)
		}
	}
}

// Next reserves the sequence number for the next poll.
func (p *Poller[T]) Next() uint64 {
	return p.issued.Add(1)
}

// Poll runs one fetch numbered seq and applies it unless a newer one already was.
// It reports whether the response was applied.
func (p *Poller[T]) Poll(ctx context.Context, seq uint64) bool {
	fctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	v, err := p.fetch(fctx)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("poll failed", logx.Int64("seq", int64(seq)), logx.Err(err))
		}
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq <= p.applied {
		if p.stale != nil {
			p.stale.WithLabelValues(p.name).Inc()
		}
		p.logger.Debug("stale poll response discarded",
			logx.String("event", "poll_stale_discarded"),
			logx.Int64("seq", int64(seq)),
			logx.Int64("applied", int64(p.applied)),
		)
		return false
	}
	p.applied = seq
	if err := p.apply(ctx, v); err != nil {
		p.logger.Warn("poll apply failed", logx.Int64("seq", int64(seq)), logx.Err(err))
	}
	return true
}

func (p *Poller[T]) spawn(ctx context.Context) {
	seq := p.Next()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Poll(ctx, seq)
	}()
}
