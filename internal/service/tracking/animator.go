package tracking

import (
	"math"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
)

// Animation defaults.
const (
	DefaultMinDuration = 500 * time.Millisecond
	DefaultMaxDuration = 3 * time.Second
	DefaultFrame       = 16 * time.Millisecond
	// DefaultBaseSpeed is in degrees per millisecond; roughly 200 km/h on screen.
	DefaultBaseSpeed = 0.0000005
)

// Frame is one rendered step of an animation.
type Frame struct {
	Position domain.Coordinates `json:"position"`
	Bearing  float64            `json:"bearing"`
	Progress float64            `json:"progress"`
	Final    bool               `json:"final"`
}

// Ticker delivers frame ticks.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) Chan() <-chan time.Time { return t.C }

// AnimatorConfig stores Animator settings. Zero values fall back to defaults.
type AnimatorConfig struct {
	Frame       time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
	BaseSpeed   float64
	TrailSize   int
}

// Animator turns fixes into eased frame sequences. At most one animation runs at a time;
// starting a new one cancels the previous.
type Animator struct {
	cfg       AnimatorConfig
	now       func() time.Time
	newTicker func(time.Duration) Ticker
	trail     *Trail

	mu      sync.Mutex
	current *run
	last    *domain.Coordinates
	bearing float64
}

// AnimatorOption customises an Animator.
type AnimatorOption func(*Animator)

// WithClock overrides the time source used to measure progress.
func WithClock(now func() time.Time) AnimatorOption {
	return func(a *Animator) { a.now = now }
}

// WithTicker overrides the frame ticker factory.
func WithTicker(f func(time.Duration) Ticker) AnimatorOption {
	return func(a *Animator) { a.newTicker = f }
}

// NewAnimator creates an Animator.
func NewAnimator(cfg AnimatorConfig, opts ...AnimatorOption) *Animator {
	if cfg.Frame <= 0 {
		cfg.Frame = DefaultFrame
	}
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultMinDuration
	}
	if cfg.MaxDuration < cfg.MinDuration {
		cfg.MaxDuration = DefaultMaxDuration
		if cfg.MaxDuration < cfg.MinDuration {
			cfg.MaxDuration = cfg.MinDuration
		}
	}
	if cfg.BaseSpeed <= 0 {
		cfg.BaseSpeed = DefaultBaseSpeed
	}
	a := &Animator{
		cfg:       cfg,
		now:       time.Now,
		newTicker: func(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} },
		trail:     NewTrail(cfg.TrailSize),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DurationFor returns the animation length for a hop, clamped to [MinDuration, MaxDuration].
func (a *Animator) DurationFor(from, to domain.Coordinates) time.Duration {
	dist := math.Hypot(to.Lat-from.Lat, to.Lng-from.Lng)
	ms := dist / a.cfg.BaseSpeed
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return a.cfg.MaxDuration
	}
	return clamp(time.Duration(ms*float64(time.Millisecond)), a.cfg.MinDuration, a.cfg.MaxDuration)
}

// Clamp bounds d to the configured duration range.
func (a *Animator) Clamp(d time.Duration) time.Duration {
	return clamp(d, a.cfg.MinDuration, a.cfg.MaxDuration)
}

// Trail returns recent rendered positions, oldest first.
func (a *Animator) Trail() []domain.Coordinates {
	return a.trail.Points()
}

// Bearing returns the bearing of the last rendered frame.
func (a *Animator) Bearing() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bearing
}

// Animate moves from -> to over duration. A nil from snaps to to with a single frame.
// onFrame must not call the returned cancel; cancel is idempotent and no frame is
// delivered once it returns.
func (a *Animator) Animate(from *domain.Coordinates, to domain.Coordinates, duration time.Duration, onFrame func(Frame)) func() {
	if from == nil {
		a.Stop()
		onFrame(a.sample(to, 1, true))
		return func() {}
	}
	route := []domain.Coordinates{*from, to}
	return a.start(route, a.Clamp(duration), onFrame)
}

// AnimateRoute moves along route, giving every segment an equal share of the eased progress.
func (a *Animator) AnimateRoute(route []domain.Coordinates, duration time.Duration, onFrame func(Frame)) (func(), error) {
	if len(route) < 2 {
		return nil, apperr.ErrInvalid
	}
	cp := append([]domain.Coordinates(nil), route...)
	return a.start(cp, a.Clamp(duration), onFrame), nil
}

// Stop cancels the running animation, if any.
func (a *Animator) Stop() {
	a.mu.Lock()
	r := a.current
	a.current = nil
	a.mu.Unlock()
	if r != nil {
		r.cancel()
	}
}

func (a *Animator) start(route []domain.Coordinates, duration time.Duration, onFrame func(Frame)) func() {
	r := &run{done: make(chan struct{})}

	a.mu.Lock()
	prev := a.current
	a.current = r
	a.mu.Unlock()
	if prev != nil {
		prev.cancel()
	}

	begin := a.now()
	ticker := a.newTicker(a.cfg.Frame)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-r.done:
				return
			case now := <-ticker.Chan():
				t := float64(now.Sub(begin)) / float64(duration)
				if t > 1 {
					t = 1
				}
				final := t >= 1
				pos := alongRoute(route, EaseInOutCubic(t))
				if !r.deliver(func() { onFrame(a.sample(pos, t, final)) }) {
					return
				}
				if final {
					a.finish(r)
					return
				}
			}
		}
	}()
	return r.cancel
}

// sample records pos as the latest rendered position and derives the bearing from the
// previous one. The bearing holds when the position does not move.
func (a *Animator) sample(pos domain.Coordinates, progress float64, final bool) Frame {
	a.mu.Lock()
	if a.last != nil && *a.last != pos {
		a.bearing = geo.BearingDegrees(*a.last, pos)
	}
	p := pos
	a.last = &p
	bearing := a.bearing
	a.mu.Unlock()

	a.trail.Push(pos)
	return Frame{Position: pos, Bearing: bearing, Progress: progress, Final: final}
}

func (a *Animator) finish(r *run) {
	a.mu.Lock()
	if a.current == r {
		a.current = nil
	}
	a.mu.Unlock()
	r.cancel()
}

type run struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// deliver runs fn unless the run was cancelled. It reports whether fn ran.
func (r *run) deliver(fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	fn()
	return true
}

func (r *run) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	close(r.done)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func durationOf(ns float64) time.Duration { return time.Duration(ns) }
