package lifecycle_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/service/lifecycle"
	testlog "courier-dispatch/internal/testutil"
)

const courierID int64 = 7

var created = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.HistoryEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return p.err
}

type fixture struct {
	store   *memStore
	clock   *fakeClock
	pub     *recordingPublisher
	metrics *metrics.Lifecycle
	logs    *testlog.Recorder
	m       *lifecycle.Machine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   newMemStore(),
		clock:   &fakeClock{now: created.Add(time.Minute)},
		pub:     &recordingPublisher{},
		metrics: metrics.NewLifecycle(),
		logs:    testlog.New(),
	}
	f.store.putOrder(domain.DeliveryOrder{
		ID:           "A1",
		Status:       domain.OrderOffered,
		PickupCode:   "1234",
		DeliveryCode: "5678",
		StoreAddress: "Rua Augusta 100",
		Address:      "Av. Paulista 1000",
		DeliveryFee:  850,
		CreatedAt:    created,
	})
	f.store.putCourier(domain.Courier{ID: courierID, Name: "Ana", Status: domain.StatusAvailable})

	seq := 0
	f.m = lifecycle.NewMachine(f.store, f.store, f.pub, f.metrics, f.logs.Logger(), lifecycle.Config{},
		lifecycle.WithClock(f.clock.Now),
		lifecycle.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("log-%d", seq)
		}),
	)
	return f
}

func (f *fixture) deliver(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := f.m.Accept(ctx, "A1", courierID)
	require.NoError(t, err)
	f.clock.Advance(5 * time.Minute)
	_, err = f.m.ArrivedAtStore(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ConfirmPickupCode(ctx, "A1", courierID, "1234")
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)
	_, err = f.m.Depart(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ArrivedAtCustomer(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ConfirmDeliveryCode(ctx, "A1", courierID, "5678")
	require.NoError(t, err)
}

func TestMachine_HappyPath(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deliver(t)

	o := f.store.order("A1")
	require.Equal(t, domain.OrderDelivered, o.Status)
	require.NotNil(t, o.AcceptedAt)
	require.NotNil(t, o.PickedUpAt)
	require.NotNil(t, o.DeliveredAt)
	require.False(t, o.PickedUpAt.Before(*o.AcceptedAt))
	require.False(t, o.DeliveredAt.Before(*o.PickedUpAt))

	c := f.store.courier(courierID)
	require.Equal(t, domain.StatusAvailable, c.Status)
	require.Nil(t, c.CurrentOrderID)
	require.EqualValues(t, 1, c.TotalDeliveries)
	require.EqualValues(t, 850, c.TotalEarnings)

	hist := f.store.history()
	require.Len(t, hist, 6)
	require.Equal(t, domain.ActionCreated, hist[0].Action())
	require.Equal(t, domain.ActionClosed, hist[5].Action())
	closed, ok := hist[5].Details.(domain.ClosedDetails)
	require.True(t, ok)
	require.EqualValues(t, 850, closed.DeliveryFee)
	require.Equal(t, 16*time.Minute, closed.Duration)

	require.Len(t, f.pub.entries, 6)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Transitions.WithLabelValues("confirm_delivery_code", "applied")))
}

func TestMachine_WrongPickupCodeThenCorrect(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.Accept(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ArrivedAtStore(ctx, "A1", courierID)
	require.NoError(t, err)

	_, err = f.m.ConfirmPickupCode(ctx, "A1", courierID, "9999")
	require.ErrorIs(t, err, apperr.ErrCodeMismatch)
	require.Equal(t, domain.OrderArrivedAtStore, f.store.order("A1").Status)
	require.Nil(t, f.store.order("A1").PickedUpAt)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CodeMismatches))

	res, err := f.m.ConfirmPickupCode(ctx, "A1", courierID, "1234")
	require.NoError(t, err)
	require.Equal(t, domain.OrderPickedUp, res.Order.Status)

	var mismatches int
	for _, e := range f.logs.Entries() {
		if e.Msg == "code mismatch" {
			mismatches++
		}
	}
	require.Equal(t, 1, mismatches)
}

func TestMachine_CodeMustMatchExactly(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"", "123", "12345", " 1234", "1234 "} {
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.m.Accept(ctx, "A1", courierID)
		require.NoError(t, err)
		_, err = f.m.ArrivedAtStore(ctx, "A1", courierID)
		require.NoError(t, err)

		_, err = f.m.ConfirmPickupCode(ctx, "A1", courierID, code)
		require.ErrorIs(t, err, apperr.ErrCodeMismatch, "code %q", code)
	}
}

func TestMachine_CancelOutForDelivery(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.Accept(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ArrivedAtStore(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ConfirmPickupCode(ctx, "A1", courierID, "1234")
	require.NoError(t, err)
	_, err = f.m.Depart(ctx, "A1", courierID)
	require.NoError(t, err)

	res, err := f.m.Cancel(ctx, "A1", courierID, "Cliente não atende")
	require.NoError(t, err)
	require.Equal(t, domain.OrderCancelled, res.Order.Status)
	require.Equal(t, "Cliente não atende", res.Order.CancelReason)

	c := f.store.courier(courierID)
	require.Equal(t, domain.StatusAvailable, c.Status)
	require.Nil(t, c.CurrentOrderID)
	require.Zero(t, c.TotalDeliveries)
	require.Zero(t, c.TotalEarnings)

	hist := f.store.history()
	last := hist[len(hist)-1]
	require.Equal(t, domain.ActionCancelled, last.Action())
	require.Equal(t, domain.CancelledDetails{From: domain.OrderOutForDelivery, Reason: "Cliente não atende"}, last.Details)

	_, err = f.m.ConfirmDeliveryCode(ctx, "A1", courierID, "5678")
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestMachine_CancelRequiresReason(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.m.Accept(context.Background(), "A1", courierID)
	require.NoError(t, err)

	_, err = f.m.Cancel(context.Background(), "A1", courierID, "   ")
	require.ErrorIs(t, err, apperr.ErrInvalid)
	require.Equal(t, domain.OrderGoingToStore, f.store.order("A1").Status)
}

func TestMachine_InvalidTransitionLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.Accept(ctx, "A1", courierID)
	require.NoError(t, err)
	before := f.store.order("A1")
	logsBefore := len(f.store.history())

	_, err = f.m.Depart(ctx, "A1", courierID)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	var te *apperr.TransitionError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "going_to_store", te.From)
	require.Equal(t, "depart", te.Event)

	require.Equal(t, before, f.store.order("A1"))
	require.Len(t, f.store.history(), logsBefore)
}

func TestMachine_DeliveredIsTerminal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.deliver(t)
	ctx := context.Background()

	_, err := f.m.Cancel(ctx, "A1", courierID, "late")
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	_, err = f.m.ArrivedAtStore(ctx, "A1", courierID)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestMachine_RepeatedEventIsNoop(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.deliver(t)

	res, err := f.m.ConfirmDeliveryCode(context.Background(), "A1", courierID, "5678")
	require.NoError(t, err)
	require.True(t, res.Noop)

	c := f.store.courier(courierID)
	require.EqualValues(t, 1, c.TotalDeliveries)
	require.EqualValues(t, 850, c.TotalEarnings)
	require.Len(t, f.store.history(), 6)
	require.Len(t, f.pub.entries, 6)
}

func TestMachine_ConcurrentDoubleTapCreditsOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.Accept(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ArrivedAtStore(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ConfirmPickupCode(ctx, "A1", courierID, "1234")
	require.NoError(t, err)
	_, err = f.m.Depart(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ArrivedAtCustomer(ctx, "A1", courierID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.m.ConfirmDeliveryCode(ctx, "A1", courierID, "5678")
		}()
	}
	wg.Wait()

	c := f.store.courier(courierID)
	require.EqualValues(t, 1, c.TotalDeliveries)
	require.EqualValues(t, 850, c.TotalEarnings)
}

func TestMachine_AcceptRequiresAvailableCourier(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	current := "B2"
	f.store.putCourier(domain.Courier{ID: courierID, Status: domain.StatusBusy, CurrentOrderID: &current})

	_, err := f.m.Accept(context.Background(), "A1", courierID)
	require.ErrorIs(t, err, apperr.ErrCourierNotAvailable)
	require.Equal(t, domain.OrderOffered, f.store.order("A1").Status)
	require.Empty(t, f.store.history())
}

func TestMachine_AcceptTakenByAnotherCourier(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.putCourier(domain.Courier{ID: 8, Status: domain.StatusAvailable})

	_, err := f.m.Accept(context.Background(), "A1", courierID)
	require.NoError(t, err)

	_, err = f.m.Accept(context.Background(), "A1", 8)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	require.Equal(t, domain.StatusAvailable, f.store.courier(8).Status)
}

func TestMachine_ForeignCourierConflict(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.m.Accept(context.Background(), "A1", courierID)
	require.NoError(t, err)

	_, err = f.m.ArrivedAtStore(context.Background(), "A1", 99)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestMachine_Reject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.m.Reject(context.Background(), "A1", courierID, "")
	require.ErrorIs(t, err, apperr.ErrInvalid)

	res, err := f.m.Reject(context.Background(), "A1", courierID, "too_far")
	require.NoError(t, err)
	require.Equal(t, domain.OrderOffered, res.Order.Status)
	require.Equal(t, "too_far", res.Order.RejectionReason)
	require.Nil(t, res.Order.CourierID)
	require.Equal(t, domain.RejectedDetails{CourierID: courierID, Reason: "too_far"}, res.Entry.Details)
}

func TestMachine_UnknownOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.m.Accept(context.Background(), "nope", courierID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.m.Status(context.Background(), "nope")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMachine_LogFailureRollsBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.failLog = errors.New("disk full")

	_, err := f.m.Accept(context.Background(), "A1", courierID)
	require.Error(t, err)
	require.Equal(t, domain.OrderOffered, f.store.order("A1").Status)
	require.Equal(t, domain.StatusAvailable, f.store.courier(courierID).Status)
	require.Empty(t, f.pub.entries)
}

func TestMachine_PublishFailureDoesNotFailEvent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	_, err := f.m.Accept(context.Background(), "A1", courierID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderGoingToStore, f.store.order("A1").Status)
}

func TestMachine_TimestampsNeverGoBackwards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.Accept(ctx, "A1", courierID)
	require.NoError(t, err)
	_, err = f.m.ArrivedAtStore(ctx, "A1", courierID)
	require.NoError(t, err)
	f.clock.Advance(-time.Hour)
	_, err = f.m.ConfirmPickupCode(ctx, "A1", courierID, "1234")
	require.NoError(t, err)

	o := f.store.order("A1")
	require.Equal(t, *o.AcceptedAt, *o.PickedUpAt)
}

func TestMachine_Status(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	view, err := f.m.Status(context.Background(), "A1")
	require.NoError(t, err)
	require.Equal(t, "1 min", view.Elapsed)
	require.False(t, view.IsLate)

	f.clock.Advance(45 * time.Minute)
	view, err = f.m.Status(context.Background(), "A1")
	require.NoError(t, err)
	require.Equal(t, "46 min", view.Elapsed)
	require.True(t, view.IsLate)
}

func TestAllowed(t *testing.T) {
	t.Parallel()

	require.True(t, lifecycle.Allowed(lifecycle.EventAccept, domain.OrderOffered))
	require.False(t, lifecycle.Allowed(lifecycle.EventCancel, domain.OrderOffered))
	require.True(t, lifecycle.Allowed(lifecycle.EventCancel, domain.OrderArrivedAtCustomer))
	require.False(t, lifecycle.Allowed(lifecycle.EventCancel, domain.OrderDelivered))
	require.False(t, lifecycle.Allowed(lifecycle.EventDepart, domain.OrderArrivedAtStore))
}
