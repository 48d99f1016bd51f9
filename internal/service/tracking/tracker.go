package tracking

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
)

// PositionStore persists the courier's last known position.
type PositionStore interface {
	UpdatePosition(ctx context.Context, courierID int64, fix domain.Fix) error
}

// Tracker feeds one courier's fixes into an Animator, dropping fixes older than the last applied one.
type Tracker struct {
	courierID int64
	animator  *Animator
	store     PositionStore
	onFrame   func(Frame)
	stale     prometheus.Counter
	logger    logx.Logger

	mu   sync.Mutex
	last *domain.Fix
}

// TrackerDeps bundles Tracker collaborators. Store, Stale and Logger may be nil.
type TrackerDeps struct {
	Animator *Animator
	Store    PositionStore
	OnFrame  func(Frame)
	Stale    prometheus.Counter
	Logger   logx.Logger
}

// NewTracker creates a Tracker seeded with the courier's last known fix, if any.
func NewTracker(courierID int64, last *domain.Fix, deps TrackerDeps) *Tracker {
	if deps.Animator == nil {
		deps.Animator = NewAnimator(AnimatorConfig{})
	}
	if deps.OnFrame == nil {
		deps.OnFrame = func(Frame) {}
	}
	if deps.Logger == nil {
		deps.Logger = logx.Nop()
	}
	t := &Tracker{
		courierID: courierID,
		animator:  deps.Animator,
		store:     deps.Store,
		onFrame:   deps.OnFrame,
		stale:     deps.Stale,
		logger:    deps.Logger.With(logx.Int64("courier_id", courierID)),
	}
	if last != nil {
		cp := *last
		t.last = &cp
	}
	return t
}

// Apply accepts a single fix and animates towards it.
func (t *Tracker) Apply(ctx context.Context, fix domain.Fix) error {
	return t.ApplyBatch(ctx, []domain.Fix{fix})
}

// ApplyBatch accepts fixes that arrived together. Fixes are ordered by time, stale ones are dropped
// and the rest are animated as one route. It returns ErrStaleFix when every fix was stale.
func (t *Tracker) ApplyBatch(ctx context.Context, fixes []domain.Fix) error {
	if len(fixes) == 0 {
		return apperr.ErrInvalid
	}
	for _, f := range fixes {
		if !geo.Valid(f.Coordinates) || f.At.IsZero() {
			return fmt.Errorf("fix %+v: %w", f, apperr.ErrInvalid)
		}
	}
	sorted := append([]domain.Fix(nil), fixes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	t.mu.Lock()
	defer t.mu.Unlock()

	var fresh []domain.Fix
	for _, f := range sorted {
		if t.last != nil && f.At.Before(t.last.At) {
			t.discard(f)
			continue
		}
		fresh = append(fresh, f)
	}
	if len(fresh) == 0 {
		return apperr.ErrStaleFix
	}

	newest := fresh[len(fresh)-1]
	if t.store != nil {
		if err := t.store.UpdatePosition(ctx, t.courierID, newest); err != nil {
			return fmt.Errorf("update position: %w", err)
		}
	}

	var from *domain.Coordinates
	if t.last != nil {
		c := t.last.Coordinates
		from = &c
	}
	t.last = &newest

	if from == nil || len(fresh) == 1 {
		d := t.animator.cfg.MinDuration
		if from != nil {
			d = t.animator.DurationFor(*from, newest.Coordinates)
		}
		t.animator.Animate(from, newest.Coordinates, d, t.onFrame)
		return nil
	}

	route := make([]domain.Coordinates, 0, len(fresh)+1)
	route = append(route, *from)
	var total float64
	prev := *from
	for _, f := range fresh {
		route = append(route, f.Coordinates)
		total += float64(t.animator.DurationFor(prev, f.Coordinates))
		prev = f.Coordinates
	}
	_, err := t.animator.AnimateRoute(route, t.animator.Clamp(durationOf(total)), t.onFrame)
	return err
}

// Last returns the last applied fix.
func (t *Tracker) Last() *domain.Fix {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return nil
	}
	cp := *t.last
	return &cp
}

// Trail returns recently rendered positions.
func (t *Tracker) Trail() []domain.Coordinates {
	return t.animator.Trail()
}

// Stop cancels any running animation.
func (t *Tracker) Stop() {
	t.animator.Stop()
}

func (t *Tracker) discard(f domain.Fix) {
	if t.stale != nil {
		t.stale.Inc()
	}
	t.logger.Debug("stale fix discarded",
		logx.String("event", "stale_fix_discarded"),
		logx.Time("fix_at", f.At),
		logx.Time("last_at", t.last.At),
	)
}
