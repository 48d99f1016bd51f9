package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/ports/dispatchtx"
	"courier-dispatch/internal/service/codegate"
)

// Config stores Machine settings.
type Config struct {
	LateAfter        time.Duration
	OperationTimeout time.Duration
}

// Result is the outcome of an applied event.
type Result struct {
	Order   domain.DeliveryOrder
	Courier *domain.Courier
	Entry   *domain.HistoryEntry
	// Noop is set when the order already was in the event's target state.
	Noop bool
}

// StatusView is the read-only projection of an order's progress.
type StatusView struct {
	Order   domain.DeliveryOrder
	Elapsed string
	IsLate  bool
}

// Machine owns the delivery lifecycle. Every event runs in one transaction covering the order,
// the courier and the log entry, and events for the same order are applied one at a time.
type Machine struct {
	tx        dispatchtx.Runner
	orders    orderGetter
	publisher HistoryPublisher
	metrics   *metrics.Lifecycle
	logger    logx.Logger
	cfg       Config
	locks     *keyedMutex
	now       func() time.Time
	newID     func() string
}

// Option customises a Machine.
type Option func(*Machine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator overrides how history entry IDs are made.
func WithIDGenerator(newID func() string) Option {
	return func(m *Machine) { m.newID = newID }
}

// NewMachine creates a Machine. publisher and m may be nil.
func NewMachine(
	tx dispatchtx.Runner,
	orders orderGetter,
	publisher HistoryPublisher,
	m *metrics.Lifecycle,
	logger logx.Logger,
	cfg Config,
	opts ...Option,
) *Machine {
	if cfg.LateAfter <= 0 {
		cfg.LateAfter = DefaultLateAfter
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	mc := &Machine{
		tx:        tx,
		orders:    orders,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		cfg:       cfg,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

// command is a single courier request.
type command struct {
	orderID   string
	event     Event
	courierID int64
	code      string
	reason    string
}

// Accept assigns an offered order to the courier. The courier must be available.
func (m *Machine) Accept(ctx context.Context, orderID string, courierID int64) (Result, error) {
	return m.apply(ctx, command{orderID: orderID, event: EventAccept, courierID: courierID})
}

// Reject declines an offer. The order stays on offer for other couriers.
func (m *Machine) Reject(ctx context.Context, orderID string, courierID int64, reason string) (Result, error) {
	return m.apply(ctx, command{orderID: orderID, event: EventReject, courierID: courierID, reason: reason})
}

// ArrivedAtStore marks the courier at the store.
func (m *Machine) ArrivedAtStore(ctx context.Context, orderID string, courierID int64) (Result, error) {
	return m.apply(ctx, command{orderID: orderID, event: EventArrivedAtStore, courierID: courierID})
}

// ConfirmPickupCode checks the store's code and marks the order picked up.
func (m *Machine) ConfirmPickupCode(ctx context.Context, orderID string, courierID int64, code string) (Result, error) {
	return m.apply(ctx, command{orderID: orderID, event: EventConfirmPickupCode, courierID: courierID, code: code})
}

// Depart marks the order out for delivery.
func (m *Machine) Depart(ctx context.Context, orderID string, courierID int64) (Result, error) {
	return m.apply(ctx, command{orderID: orderID, event: EventDepart, courierID: courierID})
}

// ArrivedAtCustomer marks the courier at the customer's address.
func (m *Machine) ArrivedAtCustomer(ctx context.Context, orderID string, courierID int64) (Result, error) {
	return m.apply(ctx, command{orderID: orderID, event: EventArrivedAtCustomer, courierID: courierID})
}

// ConfirmDeliveryCode checks the customer's code, completes the order and credits the courier.
func (m *Machine) ConfirmDeliveryCode(ctx context.Context, orderID string, courierID int64, code string) (Result, error) {
	return m.apply(ctx, command{orderID: orderID, event: EventConfirmDeliveryCode, courierID: courierID, code: code})
}

// Cancel aborts an accepted order and frees the courier.
func (m *Machine) Cancel(ctx context.Context, orderID string, courierID int64, reason string) (Result, error) {
	return m.apply(ctx, command{orderID: orderID, event: EventCancel, courierID: courierID, reason: reason})
}

// Status returns the order with its derived elapsed bucket and lateness flag.
func (m *Machine) Status(ctx context.Context, orderID string) (StatusView, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return StatusView{}, apperr.ErrInvalid
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.OperationTimeout)
	defer cancel()

	o, err := m.orders.GetOrder(ctx, orderID)
	if err != nil {
		return StatusView{}, err
	}
	if o == nil {
		return StatusView{}, apperr.ErrNotFound
	}
	now := m.now()
	return StatusView{Order: *o, Elapsed: Elapsed(o, now), IsLate: IsLate(o, now, m.cfg.LateAfter)}, nil
}

// IsLate reports whether the order is late at now.
func (m *Machine) IsLate(o *domain.DeliveryOrder, now time.Time) bool {
	return IsLate(o, now, m.cfg.LateAfter)
}

func (m *Machine) apply(ctx context.Context, cmd command) (Result, error) {
	cmd.orderID = strings.TrimSpace(cmd.orderID)
	cmd.reason = strings.TrimSpace(cmd.reason)
	if cmd.orderID == "" || cmd.courierID <= 0 {
		return Result{}, apperr.ErrInvalid
	}
	if needsReason(cmd.event) && cmd.reason == "" {
		return Result{}, fmt.Errorf("%s: reason is required: %w", cmd.event, apperr.ErrInvalid)
	}

	unlock := m.locks.Lock(cmd.orderID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.OperationTimeout)
	defer cancel()

	var res Result
	err := m.tx.WithTx(ctx, func(tx dispatchtx.Repository) error {
		var err error
		res, err = m.step(ctx, tx, cmd)
		return err
	})
	if err != nil {
		m.observe(cmd.event, outcome(err))
		m.logger.Warn("delivery event rejected",
			logx.String("event", "order_transition_rejected"),
			logx.String("action", string(cmd.event)),
			logx.String("order_id", cmd.orderID),
			logx.Int64("courier_id", cmd.courierID),
			logx.Err(err),
		)
		return Result{}, err
	}

	if res.Noop {
		m.observe(cmd.event, "noop")
		return res, nil
	}
	m.observe(cmd.event, "applied")
	m.logger.Info("delivery event applied",
		logx.String("event", "order_transition"),
		logx.String("action", string(cmd.event)),
		logx.String("order_id", res.Order.ID),
		logx.Int64("courier_id", cmd.courierID),
		logx.String("status", string(res.Order.Status)),
	)
	m.publish(ctx, res.Entry)
	return res, nil
}

// step runs inside the transaction. Any returned error rolls everything back.
func (m *Machine) step(ctx context.Context, tx dispatchtx.Repository, cmd command) (Result, error) {
	o, err := tx.GetOrderForUpdate(ctx, cmd.orderID)
	if err != nil {
		return Result{}, err
	}
	if o == nil {
		return Result{}, fmt.Errorf("order %q: %w", cmd.orderID, apperr.ErrNotFound)
	}

	if cmd.event != EventAccept && cmd.event != EventReject {
		if o.CourierID == nil || *o.CourierID != cmd.courierID {
			return Result{}, fmt.Errorf("order %q is not assigned to courier %d: %w", o.ID, cmd.courierID, apperr.ErrConflict)
		}
	}

	if repeated(cmd, o) {
		return Result{Order: *o, Noop: true}, nil
	}

	to, ok := next(cmd.event, o.Status)
	if !ok {
		return Result{}, &apperr.TransitionError{From: string(o.Status), Event: string(cmd.event)}
	}

	switch cmd.event {
	case EventConfirmPickupCode:
		if !codegate.Verify(o.PickupCode, cmd.code) {
			m.codeMismatch(o.ID, cmd)
			return Result{}, fmt.Errorf("pickup code: %w", apperr.ErrCodeMismatch)
		}
	case EventConfirmDeliveryCode:
		if !codegate.Verify(o.DeliveryCode, cmd.code) {
			m.codeMismatch(o.ID, cmd)
			return Result{}, fmt.Errorf("delivery code: %w", apperr.ErrCodeMismatch)
		}
	}

	from := o.Status
	updated := o.Clone()
	updated.Status = to
	ts := stamp(o, m.now())

	var (
		courier *domain.Courier
		details domain.HistoryDetails
	)

	switch cmd.event {
	case EventAccept:
		courier, err = m.lockCourier(ctx, tx, cmd.courierID)
		if err != nil {
			return Result{}, err
		}
		if courier.Status != domain.StatusAvailable {
			return Result{}, fmt.Errorf("courier %d is %s: %w", courier.ID, courier.Status, apperr.ErrCourierNotAvailable)
		}
		id := cmd.courierID
		updated.CourierID = &id
		updated.AcceptedAt = &ts
		courier.Status = domain.StatusBusy
		orderID := updated.ID
		courier.CurrentOrderID = &orderID
		details = domain.CreatedDetails{CourierID: cmd.courierID}

	case EventReject:
		updated.RejectionReason = cmd.reason
		details = domain.RejectedDetails{CourierID: cmd.courierID, Reason: cmd.reason}

	case EventConfirmPickupCode:
		updated.PickedUpAt = &ts
		details = domain.UpdatedDetails{From: from, To: to, Event: string(cmd.event)}

	case EventConfirmDeliveryCode:
		courier, err = m.lockCourier(ctx, tx, cmd.courierID)
		if err != nil {
			return Result{}, err
		}
		updated.DeliveredAt = &ts
		courier.TotalDeliveries++
		courier.TotalEarnings += updated.DeliveryFee
		release(courier, updated.ID)
		details = domain.ClosedDetails{DeliveryFee: updated.DeliveryFee, Duration: ts.Sub(updated.CreatedAt)}

	case EventCancel:
		courier, err = m.lockCourier(ctx, tx, cmd.courierID)
		if err != nil {
			return Result{}, err
		}
		updated.CancelledAt = &ts
		updated.CancelReason = cmd.reason
		release(courier, updated.ID)
		details = domain.CancelledDetails{From: from, Reason: cmd.reason}

	default:
		details = domain.UpdatedDetails{From: from, To: to, Event: string(cmd.event)}
	}

	if err := tx.UpdateOrder(ctx, updated); err != nil {
		return Result{}, err
	}
	if courier != nil {
		if err := tx.UpdateCourier(ctx, courier); err != nil {
			return Result{}, err
		}
	}

	courierID := cmd.courierID
	entry := domain.HistoryEntry{
		ID:        m.newID(),
		OrderID:   updated.ID,
		CourierID: &courierID,
		At:        ts,
		Details:   details,
	}
	if err := tx.CreateLog(ctx, entry); err != nil {
		return Result{}, err
	}

	return Result{Order: *updated, Courier: courier, Entry: &entry}, nil
}

func (m *Machine) lockCourier(ctx context.Context, tx dispatchtx.Repository, id int64) (*domain.Courier, error) {
	c, err := tx.GetCourierForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("courier %d: %w", id, apperr.ErrNotFound)
	}
	return c, nil
}

func (m *Machine) codeMismatch(orderID string, cmd command) {
	if m.metrics != nil {
		m.metrics.CodeMismatches.Inc()
	}
	m.logger.Warn("code mismatch",
		logx.String("event", "code_mismatch"),
		logx.String("action", string(cmd.event)),
		logx.String("order_id", orderID),
		logx.Int64("courier_id", cmd.courierID),
	)
}

func (m *Machine) publish(ctx context.Context, e *domain.HistoryEntry) {
	if m.publisher == nil || e == nil {
		return
	}
	if err := m.publisher.Publish(ctx, *e); err != nil {
		m.logger.Error("history publish failed",
			logx.String("order_id", e.OrderID),
			logx.String("action", string(e.Action())),
			logx.Err(err),
		)
	}
}

func (m *Machine) observe(ev Event, result string) {
	if m.metrics == nil {
		return
	}
	m.metrics.Transitions.WithLabelValues(string(ev), result).Inc()
}

// repeated reports whether the order already sits where cmd would take it.
func repeated(cmd command, o *domain.DeliveryOrder) bool {
	to, ok := target(cmd.event)
	if !ok || o.Status != to {
		return false
	}
	if cmd.event == EventAccept {
		return o.CourierID != nil && *o.CourierID == cmd.courierID
	}
	return true
}

// release frees the courier if it still points at orderID.
func release(c *domain.Courier, orderID string) {
	if c.CurrentOrderID == nil || *c.CurrentOrderID == orderID {
		c.Status = domain.StatusAvailable
		c.CurrentOrderID = nil
	}
}

// stamp returns now, moved forward if needed so lifecycle timestamps never go backwards.
func stamp(o *domain.DeliveryOrder, now time.Time) time.Time {
	latest := o.CreatedAt
	for _, t := range []*time.Time{o.AcceptedAt, o.PickedUpAt, o.DeliveredAt, o.CancelledAt} {
		if t != nil && t.After(latest) {
			latest = *t
		}
	}
	if now.Before(latest) {
		return latest
	}
	return now
}

func outcome(err error) string {
	switch {
	case errors.Is(err, apperr.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, apperr.ErrCodeMismatch):
		return "code_mismatch"
	case errors.Is(err, apperr.ErrCourierNotAvailable):
		return "courier_not_available"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
