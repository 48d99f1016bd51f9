package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/codegate"
)

// Processor writes dispatcher events into the order store.
// Events that can never succeed come back wrapped in apperr.ErrInvalid.
type Processor struct {
	store   Store
	factory *actionFactory
	logger  logx.Logger
	now     func() time.Time
	codes   func() (string, error)
}

// NewProcessor creates a Processor.
func NewProcessor(store Store, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		codes:  codegate.Generate,
	}
	p.factory = newActionFactory(p.onOffered, p.onWithdrawn, p.onMessage)
	return p
}

// Handle processes a single Event. Unknown kinds are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	fn, ok := p.factory.get(e.Kind)
	if !ok {
		p.logger.Debug("dispatch event ignored", logx.String("kind", e.Kind))
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onOffered(ctx context.Context, e Event) error {
	if e.Order == nil || strings.TrimSpace(e.Order.ID) == "" {
		return fmt.Errorf("order_offered without order: %w", apperr.ErrInvalid)
	}
	o := e.Order.Clone()
	o.ID = strings.TrimSpace(o.ID)
	o.Status = domain.OrderOffered
	o.CourierID = nil
	o.AcceptedAt, o.PickedUpAt, o.DeliveredAt, o.CancelledAt = nil, nil, nil, nil
	if o.DeliveryFee < 0 {
		return fmt.Errorf("order %s: negative delivery fee: %w", o.ID, apperr.ErrInvalid)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = p.eventTime(e)
	}

	var err error
	if o.PickupCode, err = p.code(o.PickupCode); err != nil {
		return fmt.Errorf("order %s pickup code: %w", o.ID, err)
	}
	if o.DeliveryCode, err = p.code(o.DeliveryCode); err != nil {
		return fmt.Errorf("order %s delivery code: %w", o.ID, err)
	}

	stored, err := p.store.UpsertOffer(ctx, o)
	if err != nil {
		return err
	}
	if !stored {
		p.logger.Info("offer ignored, order already in progress", logx.String("order_id", o.ID))
		return nil
	}
	p.logger.Info("order offered", logx.String("event", "order_offered"), logx.String("order_id", o.ID))
	return nil
}

func (p *Processor) onWithdrawn(ctx context.Context, e Event) error {
	id := strings.TrimSpace(e.OrderID)
	if id == "" && e.Order != nil {
		id = strings.TrimSpace(e.Order.ID)
	}
	if id == "" {
		return fmt.Errorf("order_withdrawn without order id: %w", apperr.ErrInvalid)
	}
	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		reason = "withdrawn by dispatcher"
	}

	withdrawn, err := p.store.WithdrawOffer(ctx, id, reason)
	if err != nil {
		return err
	}
	if !withdrawn {
		p.logger.Info("withdraw ignored, order not on offer", logx.String("order_id", id))
		return nil
	}
	p.logger.Info("offer withdrawn", logx.String("event", "order_withdrawn"), logx.String("order_id", id))
	return nil
}

func (p *Processor) onMessage(ctx context.Context, e Event) error {
	if e.Message == nil {
		return fmt.Errorf("admin_message without message: %w", apperr.ErrInvalid)
	}
	m := *e.Message
	m.MessageID = strings.TrimSpace(m.MessageID)
	m.Title = strings.TrimSpace(m.Title)
	if m.MessageID == "" || m.CourierID <= 0 || m.Title == "" {
		return fmt.Errorf("admin message %q: %w", m.MessageID, apperr.ErrInvalid)
	}
	if m.Priority == "" {
		m.Priority = domain.PriorityNormal
	}
	if !m.Priority.Valid() {
		return fmt.Errorf("admin message %s priority %q: %w", m.MessageID, m.Priority, apperr.ErrInvalid)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = p.eventTime(e)
	}

	err := p.store.InsertMessage(ctx, &m)
	if errors.Is(err, apperr.ErrConflict) {
		return nil
	}
	return err
}

// code keeps a well-formed dispatcher code or makes a new one.
func (p *Processor) code(given string) (string, error) {
	if given == "" {
		return p.codes()
	}
	if !codegate.WellFormed(given) {
		return "", fmt.Errorf("malformed code: %w", apperr.ErrInvalid)
	}
	return given, nil
}

func (p *Processor) eventTime(e Event) time.Time {
	if !e.OccurredAt.IsZero() {
		return e.OccurredAt.UTC()
	}
	return p.now()
}
