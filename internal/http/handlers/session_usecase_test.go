package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/service/lifecycle"
	"courier-dispatch/internal/service/notify"
	"courier-dispatch/internal/service/session"
	"courier-dispatch/internal/service/tracking"
	"courier-dispatch/internal/storage/kv"
)

type courierSource map[int64]*domain.Courier

func (s courierSource) GetCourier(_ context.Context, id int64) (*domain.Courier, error) {
	return s[id], nil
}

// offerBoard lists offers and takes them down once the courier decides.
type offerBoard struct {
	mu      sync.Mutex
	orders  []domain.DeliveryOrder
	decided []string
}

func (b *offerBoard) ListOffers(_ context.Context, _ int64, _ int) ([]domain.DeliveryOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.DeliveryOrder(nil), b.orders...), nil
}

func (b *offerBoard) ListPendingMessages(context.Context, int64) ([]domain.AdminMessage, error) {
	return nil, nil
}

func (b *offerBoard) take(event, orderID string) (lifecycle.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.orders[:0]
	for _, o := range b.orders {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	b.orders = kept
	b.decided = append(b.decided, event+" "+orderID)
	return lifecycle.Result{Order: domain.DeliveryOrder{ID: orderID}}, nil
}

func (b *offerBoard) Accept(_ context.Context, orderID string, _ int64) (lifecycle.Result, error) {
	return b.take("accept", orderID)
}

func (b *offerBoard) Reject(_ context.Context, orderID string, _ int64, reason string) (lifecycle.Result, error) {
	return b.take("reject:"+reason, orderID)
}

func (b *offerBoard) decisions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.decided...)
}

type device struct {
	mu      sync.Mutex
	looping bool
	buzzing bool
}

func (d *device) AlertDriver(int64) notify.AlertDriver { return d }
func (d *device) Frames(int64) func(tracking.Frame)    { return func(tracking.Frame) {} }

func (d *device) PlayLoop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.looping = true
}

func (d *device) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.looping = false
}

func (d *device) StartVibration([]time.Duration) notify.VibrationHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buzzing = true
	return "v-1"
}

func (d *device) StopVibration(notify.VibrationHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buzzing = false
}

func (d *device) alerting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.looping || d.buzzing
}

func TestSessionHandler_OfferDecisionClearsQueueAndAlerts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resolve func(h *handlers.SessionHandler) http.HandlerFunc
		body    string
		want    string
	}{
		{
			name:    "accept",
			resolve: func(h *handlers.SessionHandler) http.HandlerFunc { return h.AcceptOffer },
			want:    "accept o-1",
		},
		{
			name:    "reject",
			resolve: func(h *handlers.SessionHandler) http.HandlerFunc { return h.RejectOffer },
			body:    `{"reason":"too_far"}`,
			want:    "reject:too_far o-1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			board := &offerBoard{orders: []domain.DeliveryOrder{{ID: "o-1", Status: domain.OrderOffered}}}
			dev := &device{}
			reg := session.NewRegistry(session.Config{
				OffersInterval:   time.Hour,
				MessagesInterval: time.Hour,
				PollTimeout:      time.Second,
			}, session.Deps{
				Couriers:  courierSource{7: {ID: 7, Status: domain.StatusAvailable}},
				Offers:    board,
				Messages:  board,
				Lifecycle: board,
				Store:     kv.NewMemoryStore(),
				Outlet:    dev,
			})
			t.Cleanup(reg.Shutdown)
			h := handlers.NewSessionHandler(testLogger(), handlers.NewSessionUsecase(reg), &stubStream{}, nil)

			rr := httptest.NewRecorder()
			h.Start(rr, newRequest(http.MethodPost, "/couriers/7/session", nil, "id", "7"))
			require.Equal(t, http.StatusCreated, rr.Code)

			pending := func() []map[string]any {
				rr := httptest.NewRecorder()
				h.Notifications(rr, newRequest(http.MethodGet, "/couriers/7/notifications", nil, "id", "7"))
				require.Equal(t, http.StatusOK, rr.Code)
				var items []map[string]any
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&items))
				return items
			}
			s, err := reg.Get(7)
			require.NoError(t, err)
			require.Eventually(t, func() bool { return s.Queue().Len() == 1 }, time.Second, 5*time.Millisecond)
			require.Equal(t, domain.OfferItemID("o-1"), pending()[0]["id"])
			require.True(t, dev.alerting())

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rr = httptest.NewRecorder()
			tt.resolve(h)(rr, newRequest(http.MethodPost, "/x", body, "id", "7", "itemID", domain.OfferItemID("o-1")))
			require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

			require.Equal(t, []string{tt.want}, board.decisions())
			require.Empty(t, pending())
			require.False(t, dev.alerting())
		})
	}
}
