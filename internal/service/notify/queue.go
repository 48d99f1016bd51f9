package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/storage/kv"
)

// DefaultNamespace prefixes every persisted queue key.
const DefaultNamespace = "notifyq"

// Resolve actions.
const (
	ActionAccept  = "accept"
	ActionReject  = "reject"
	ActionConfirm = "confirm"
)

// Queue is the persisted FIFO of blocking items for one courier.
// Items are stored one key each, so writes are last-write-wins per item.
type Queue struct {
	courierID int64
	prefix    string
	store     kv.Store
	offers    OfferResolver
	messages  MessageAcker
	alerts    *Alerts
	metrics   *metrics.Queue
	logger    logx.Logger
	now       func() time.Time

	mu    sync.Mutex
	items map[string]domain.NotificationItem
	seq   int64
}

// QueueDeps bundles Queue collaborators. Only Store is required.
type QueueDeps struct {
	Store     kv.Store
	Offers    OfferResolver
	Messages  MessageAcker
	Alerts    *Alerts
	Metrics   *metrics.Queue
	Logger    logx.Logger
	Namespace string
	Now       func() time.Time
}

// NewQueue creates an empty queue for courierID. Call Load to restore persisted items.
func NewQueue(courierID int64, deps QueueDeps) *Queue {
	ns := deps.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	logger := deps.Logger
	if logger == nil {
		logger = logx.Nop()
	}
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Queue{
		courierID: courierID,
		prefix:    ns + ":" + strconv.FormatInt(courierID, 10) + ":",
		store:     deps.Store,
		offers:    deps.Offers,
		messages:  deps.Messages,
		alerts:    deps.Alerts,
		metrics:   deps.Metrics,
		logger:    logger.With(logx.Int64("courier_id", courierID)),
		now:       now,
		items:     make(map[string]domain.NotificationItem),
	}
}

// Load replaces the in-memory state with what is persisted.
// Undecodable data resets the courier's queue to empty instead of failing.
func (q *Queue) Load(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	keys, err := q.store.Keys(ctx, q.prefix)
	if err != nil {
		return fmt.Errorf("list queue keys: %w", err)
	}

	loaded := make(map[string]domain.NotificationItem, len(keys))
	var corrupt error
	for _, k := range keys {
		raw, ok, err := q.store.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("read queue item: %w", err)
		}
		if !ok {
			continue
		}
		it, err := decodeItem(raw)
		if err != nil || q.key(it.ID) != k {
			corrupt = errors.Join(corrupt, fmt.Errorf("key %q: %w", k, apperr.ErrQueueCorrupt))
			continue
		}
		loaded[it.ID] = it
	}

	before := len(q.items)
	if corrupt != nil {
		q.logger.Error("notification queue reset",
			logx.String("event", "queue_reset"),
			logx.Int("keys", len(keys)),
			logx.Err(corrupt),
		)
		if q.metrics != nil {
			q.metrics.Resets.Inc()
		}
		if err := q.store.Delete(ctx, keys...); err != nil {
			return fmt.Errorf("reset queue: %w", err)
		}
		loaded = make(map[string]domain.NotificationItem)
	}

	q.items = loaded
	q.seq = 0
	for _, it := range loaded {
		if it.Seq > q.seq {
			q.seq = it.Seq
		}
	}
	q.gauge(len(q.items) - before)
	q.alerts.Sync(len(q.items))
	return nil
}

// Enqueue adds item unless an item with the same id is pending. It reports whether the item was added.
func (q *Queue) Enqueue(ctx context.Context, item domain.NotificationItem) (bool, error) {
	if !item.Valid() {
		return false, fmt.Errorf("notification item: %w", apperr.ErrInvalid)
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.items[item.ID]; ok {
		return false, nil
	}

	item.Seq = q.seq + 1
	if item.EnqueuedAt.IsZero() {
		item.EnqueuedAt = q.now()
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("encode queue item: %w", err)
	}
	if err := q.store.Set(ctx, q.key(item.ID), string(raw)); err != nil {
		return false, fmt.Errorf("persist queue item: %w", err)
	}

	q.seq = item.Seq
	q.items[item.ID] = item
	q.gauge(1)
	q.alerts.Sync(len(q.items))

	q.logger.Info("notification enqueued",
		logx.String("event", "notification_enqueued"),
		logx.String("item_id", item.ID),
		logx.String("kind", string(item.Kind)),
	)
	return true, nil
}

// List returns pending items oldest first.
func (q *Queue) List() []domain.NotificationItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sorted()
}

// Head returns the oldest pending item, the one actively blocking the courier.
func (q *Queue) Head() (domain.NotificationItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.sorted()
	if len(items) == 0 {
		return domain.NotificationItem{}, false
	}
	return items[0], true
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Accept resolves an offer by accepting the order. If the lifecycle refuses, the item stays pending.
func (q *Queue) Accept(ctx context.Context, itemID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, err := q.pending(itemID, domain.KindOrderOffer)
	if err != nil {
		return err
	}
	if q.offers == nil {
		return errors.New("offer resolver is not configured")
	}
	if _, err := q.offers.Accept(ctx, it.Offer.OrderID, q.courierID); err != nil {
		return fmt.Errorf("accept %s: %w", it.Offer.OrderID, err)
	}
	return q.remove(ctx, it, ActionAccept)
}

// Reject resolves an offer by declining it. reason is required.
// An offer the lifecycle no longer knows or no longer holds on offer is dropped all the same.
func (q *Queue) Reject(ctx context.Context, itemID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("reject reason is required: %w", apperr.ErrInvalid)
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	it, err := q.pending(itemID, domain.KindOrderOffer)
	if err != nil {
		return err
	}
	if q.offers != nil {
		_, err := q.offers.Reject(ctx, it.Offer.OrderID, q.courierID, reason)
		switch {
		case err == nil:
		case errors.Is(err, apperr.ErrInvalidTransition), errors.Is(err, apperr.ErrNotFound):
			q.logger.Warn("rejecting stale offer",
				logx.String("item_id", it.ID),
				logx.Err(err),
			)
		default:
			return fmt.Errorf("reject %s: %w", it.Offer.OrderID, err)
		}
	}
	return q.remove(ctx, it, ActionReject)
}

// Confirm resolves an administrative message.
func (q *Queue) Confirm(ctx context.Context, itemID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, err := q.pending(itemID, domain.KindAdminMessage)
	if err != nil {
		return err
	}
	if q.messages != nil {
		if err := q.messages.AckMessage(ctx, it.Message.MessageID, q.courierID); err != nil {
			return fmt.Errorf("confirm %s: %w", it.Message.MessageID, err)
		}
	}
	return q.remove(ctx, it, ActionConfirm)
}

// Close releases alerts and the pending gauge share. Persisted items stay.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gauge(-len(q.items))
	q.alerts.Sync(0)
}

func (q *Queue) pending(itemID string, kind domain.NotificationKind) (domain.NotificationItem, error) {
	it, ok := q.items[strings.TrimSpace(itemID)]
	if !ok {
		return domain.NotificationItem{}, fmt.Errorf("notification %q: %w", itemID, apperr.ErrNotFound)
	}
	if it.Kind != kind {
		return domain.NotificationItem{}, fmt.Errorf("notification %q is %s: %w", itemID, it.Kind, apperr.ErrInvalid)
	}
	return it, nil
}

func (q *Queue) remove(ctx context.Context, it domain.NotificationItem, action string) error {
	if err := q.store.Delete(ctx, q.key(it.ID)); err != nil {
		return fmt.Errorf("delete queue item: %w", err)
	}
	delete(q.items, it.ID)
	q.gauge(-1)
	if q.metrics != nil {
		q.metrics.Resolved.WithLabelValues(string(it.Kind), action).Inc()
	}
	q.alerts.Sync(len(q.items))

	q.logger.Info("notification resolved",
		logx.String("event", "notification_resolved"),
		logx.String("item_id", it.ID),
		logx.String("action", action),
	)
	return nil
}

func (q *Queue) sorted() []domain.NotificationItem {
	out := make([]domain.NotificationItem, 0, len(q.items))
	for _, it := range q.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (q *Queue) gauge(delta int) {
	if q.metrics == nil || delta == 0 {
		return
	}
	q.metrics.Pending.Add(float64(delta))
}

func (q *Queue) key(itemID string) string {
	return q.prefix + itemID
}

func decodeItem(raw string) (domain.NotificationItem, error) {
	var it domain.NotificationItem
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		return domain.NotificationItem{}, err
	}
	if !it.Valid() {
		return domain.NotificationItem{}, errors.New("invalid item")
	}
	return it, nil
}
