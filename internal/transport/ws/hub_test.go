package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/notify"
	"courier-dispatch/internal/service/tracking"
	testlog "courier-dispatch/internal/testutil"
)

type recordingSink struct {
	mu   sync.Mutex
	msgs []command
	raw  [][]byte
	err  error
}

func (s *recordingSink) Send(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	var c command
	_ = json.Unmarshal(b, &c)
	s.msgs = append(s.msgs, c)
	s.raw = append(s.raw, b)
	return nil
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.msgs))
	for _, m := range s.msgs {
		out = append(out, m.Type)
	}
	return out
}

func (s *recordingSink) count(typ string) int {
	n := 0
	for _, t := range s.types() {
		if t == typ {
			n++
		}
	}
	return n
}

func TestHub_BroadcastScopedToCourier(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	a, b := &recordingSink{}, &recordingSink{}
	h.Add(1, a)
	h.Add(2, b)
	require.Equal(t, 1, h.Clients(1))

	h.Broadcast(1, command{Type: TypeStop})

	require.Equal(t, []string{TypeStop}, a.types())
	require.Empty(t, b.types())

	h.Remove(1, a)
	require.Equal(t, 0, h.Clients(1))
	h.Broadcast(1, command{Type: TypeStop})
	require.Len(t, a.types(), 1)
}

func TestHub_Frames(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	s := &recordingSink{}
	h.Add(7, s)

	h.Frames(7)(tracking.Frame{Position: domain.Coordinates{Lat: 1, Lng: 2}, Bearing: 90, Progress: 1, Final: true})

	require.Len(t, s.raw, 1)
	var got map[string]any
	require.NoError(t, json.Unmarshal(s.raw[0], &got))
	require.Equal(t, TypeFrame, got["type"])
	require.Equal(t, 90.0, got["bearing"])
	require.Equal(t, true, got["final"])
	require.Equal(t, map[string]any{"lat": 1.0, "lng": 2.0}, got["position"])
}

func TestHub_AlertsReplayedToLateJoiner(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	t.Cleanup(h.Close)
	d := h.AlertDriver(3)

	d.PlayLoop()
	handle := d.StartVibration([]time.Duration{time.Hour})
	require.NotEmpty(t, handle)

	late := &recordingSink{}
	h.Add(3, late)
	require.Equal(t, []string{TypePlayLoop, TypeVibrate}, late.types())
	require.Equal(t, handle, late.msgs[1].Handle)
	require.Equal(t, []int64{int64(time.Hour / time.Millisecond)}, late.msgs[1].PatternMs)

	d.Stop()
	d.StopVibration(handle)
	require.Equal(t, []string{TypePlayLoop, TypeVibrate, TypeStop, TypeStopVibration}, late.types())

	again := &recordingSink{}
	h.Add(3, again)
	require.Empty(t, again.types())
}

func TestHub_VibrationRepeatsUntilStopped(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	s := &recordingSink{}
	h.Add(4, s)
	d := h.AlertDriver(4)

	handle := d.StartVibration([]time.Duration{2 * time.Millisecond, 3 * time.Millisecond})
	require.Eventually(t, func() bool { return s.count(TypeVibrate) >= 3 }, time.Second, time.Millisecond)

	d.StopVibration(handle)
	stopped := s.count(TypeVibrate)
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, stopped, s.count(TypeVibrate))
	require.Equal(t, 1, s.count(TypeStopVibration))

	d.StopVibration(handle)
	require.Equal(t, 1, s.count(TypeStopVibration))
}

func TestHub_AlertsDriveFromQueueAlerts(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	t.Cleanup(h.Close)
	s := &recordingSink{}
	h.Add(5, s)

	a := notify.NewAlerts(h.AlertDriver(5), []time.Duration{time.Hour})
	a.Sync(2)
	a.Sync(1)
	a.Sync(0)

	require.Equal(t, []string{TypePlayLoop, TypeVibrate, TypeStop, TypeStopVibration}, s.types())
}

func TestHub_SendFailureIsLogged(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	h := NewHub(rec.Logger())
	h.Add(6, &recordingSink{err: errors.New("closed")})

	h.Broadcast(6, command{Type: TypeStop})

	entries := rec.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "ws send failed", entries[0].Msg)
}
