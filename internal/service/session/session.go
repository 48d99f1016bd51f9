package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/service/notify"
	"courier-dispatch/internal/service/polling"
	"courier-dispatch/internal/service/tracking"
	"courier-dispatch/internal/storage/kv"
)

// Config stores session settings.
type Config struct {
	OffersInterval   time.Duration
	MessagesInterval time.Duration
	PollTimeout      time.Duration
	OfferLimit       int
	Namespace        string
	Animation        tracking.AnimatorConfig
}

// Deps bundles the collaborators shared by every session.
type Deps struct {
	Couriers  courierGetter
	Offers    OfferSource
	Messages  MessageSource
	Acks      notify.MessageAcker
	Lifecycle notify.OfferResolver
	Positions tracking.PositionStore
	Store     kv.Store
	Outlet    Outlet
	Queue     *metrics.Queue
	Stale     prometheus.Counter
	PollStale *prometheus.CounterVec
	Logger    logx.Logger
}

// Session is the runtime of one courier: its notification queue, its position tracker and the
// pollers that feed the queue.
type Session struct {
	courierID int64
	queue     *notify.Queue
	tracker   *tracking.Tracker
	started   time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// CourierID returns the owning courier.
func (s *Session) CourierID() int64 { return s.courierID }

// Queue returns the courier's notification queue.
func (s *Session) Queue() *notify.Queue { return s.queue }

// Tracker returns the courier's position tracker.
func (s *Session) Tracker() *tracking.Tracker { return s.tracker }

// StartedAt returns when the session started.
func (s *Session) StartedAt() time.Time { return s.started }

// Registry owns the live sessions of this process. Every courier has at most one.
type Registry struct {
	cfg    Config
	deps   Deps
	logger logx.Logger

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewRegistry creates a Registry.
func NewRegistry(cfg Config, deps Deps) *Registry {
	if cfg.OffersInterval <= 0 {
		cfg.OffersInterval = 3 * time.Second
	}
	if cfg.MessagesInterval <= 0 {
		cfg.MessagesInterval = 5 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 2 * time.Second
	}
	if cfg.OfferLimit <= 0 {
		cfg.OfferLimit = 20
	}
	if deps.Logger == nil {
		deps.Logger = logx.Nop()
	}
	return &Registry{
		cfg:      cfg,
		deps:     deps,
		logger:   deps.Logger,
		sessions: make(map[int64]*Session),
	}
}

// Start opens the courier's session, or returns the running one.
func (r *Registry) Start(ctx context.Context, courierID int64) (*Session, bool, error) {
	if courierID <= 0 {
		return nil, false, apperr.ErrInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[courierID]; ok {
		return s, false, nil
	}

	c, err := r.deps.Couriers.GetCourier(ctx, courierID)
	if err != nil {
		return nil, false, err
	}
	if c == nil {
		return nil, false, fmt.Errorf("courier %d: %w", courierID, apperr.ErrNotFound)
	}

	logger := r.logger.With(logx.Int64("courier_id", courierID))

	var alerts *notify.Alerts
	var onFrame func(tracking.Frame)
	if r.deps.Outlet != nil {
		alerts = notify.NewAlerts(r.deps.Outlet.AlertDriver(courierID), nil)
		onFrame = r.deps.Outlet.Frames(courierID)
	}

	q := notify.NewQueue(courierID, notify.QueueDeps{
		Store:     r.deps.Store,
		Offers:    r.deps.Lifecycle,
		Messages:  r.deps.Acks,
		Alerts:    alerts,
		Metrics:   r.deps.Queue,
		Logger:    r.deps.Logger,
		Namespace: r.cfg.Namespace,
	})
	if err := q.Load(ctx); err != nil {
		return nil, false, fmt.Errorf("load queue: %w", err)
	}

	tr := tracking.NewTracker(courierID, c.LastKnownPosition, tracking.TrackerDeps{
		Animator: tracking.NewAnimator(r.cfg.Animation),
		Store:    r.deps.Positions,
		OnFrame:  onFrame,
		Stale:    r.deps.Stale,
		Logger:   r.deps.Logger,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		courierID: courierID,
		queue:     q,
		tracker:   tr,
		started:   time.Now().UTC(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	offers := polling.New("offers",
		polling.Config{Interval: r.cfg.OffersInterval, Timeout: r.cfg.PollTimeout},
		func(ctx context.Context) ([]domain.DeliveryOrder, error) {
			return r.deps.Offers.ListOffers(ctx, courierID, r.cfg.OfferLimit)
		},
		func(ctx context.Context, orders []domain.DeliveryOrder) error {
			return enqueueOffers(ctx, q, orders)
		},
		r.deps.PollStale, logger,
	)
	messages := polling.New("messages",
		polling.Config{Interval: r.cfg.MessagesInterval, Timeout: r.cfg.PollTimeout},
		func(ctx context.Context) ([]domain.AdminMessage, error) {
			return r.deps.Messages.ListPendingMessages(ctx, courierID)
		},
		func(ctx context.Context, msgs []domain.AdminMessage) error {
			return enqueueMessages(ctx, q, msgs)
		},
		r.deps.PollStale, logger,
	)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return offers.Run(gctx) })
	g.Go(func() error { return messages.Run(gctx) })
	go func() {
		defer close(s.done)
		if err := g.Wait(); err != nil {
			logger.Error("session stopped with error", logx.Err(err))
		}
	}()

	r.sessions[courierID] = s
	logger.Info("courier session started",
		logx.String("event", "session_started"),
		logx.Int("pending", q.Len()),
	)
	return s, true, nil
}

// Get returns the running session of courierID.
func (r *Registry) Get(courierID int64) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[courierID]
	if !ok {
		return nil, fmt.Errorf("session of courier %d: %w", courierID, apperr.ErrNotFound)
	}
	return s, nil
}

// Stop ends the courier's session and waits for its pollers. Persisted queue items are kept.
func (r *Registry) Stop(courierID int64) error {
	r.mu.Lock()
	s, ok := r.sessions[courierID]
	delete(r.sessions, courierID)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session of courier %d: %w", courierID, apperr.ErrNotFound)
	}
	r.close(s)
	return nil
}

// Shutdown stops every session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	for _, s := range all {
		r.close(s)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) close(s *Session) {
	s.cancel()
	<-s.done
	s.tracker.Stop()
	s.queue.Close()
	r.logger.Info("courier session stopped",
		logx.String("event", "session_stopped"),
		logx.Int64("courier_id", s.courierID),
	)
}

func enqueueOffers(ctx context.Context, q *notify.Queue, orders []domain.DeliveryOrder) error {
	for _, o := range orders {
		// codes are revealed to the courier only through the store and the customer
		o.PickupCode, o.DeliveryCode = "", ""
		item := domain.NewOfferItem(domain.OrderOffer{OrderID: o.ID, Snapshot: o, OfferedAt: o.CreatedAt})
		if _, err := q.Enqueue(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func enqueueMessages(ctx context.Context, q *notify.Queue, msgs []domain.AdminMessage) error {
	for _, m := range msgs {
		if _, err := q.Enqueue(ctx, domain.NewMessageItem(m)); err != nil {
			return err
		}
	}
	return nil
}
