package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/notify"
	"courier-dispatch/internal/service/tracking"
)

// Command types sent to devices.
const (
	TypeFrame         = "frame"
	TypePlayLoop      = "play_loop"
	TypeStop          = "stop"
	TypeVibrate       = "vibrate"
	TypeStopVibration = "stop_vibration"
)

type command struct {
	Type      string                 `json:"type"`
	Handle    notify.VibrationHandle `json:"handle,omitempty"`
	PatternMs []int64                `json:"pattern_ms,omitempty"`
}

type frameMessage struct {
	Type string `json:"type"`
	tracking.Frame
}

type vibration struct {
	pattern []int64
	done    chan struct{}
	exited  chan struct{}
}

type room struct {
	clients    map[sink]struct{}
	playing    bool
	vibrations map[notify.VibrationHandle]*vibration
}

// Hub fans session output out to every connected device of a courier
// and remembers the alert state so late joiners start in sync.
type Hub struct {
	logger logx.Logger

	mu    sync.Mutex
	rooms map[int64]*room
}

// NewHub creates an empty Hub.
func NewHub(logger logx.Logger) *Hub {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Hub{logger: logger, rooms: make(map[int64]*room)}
}

func (h *Hub) roomLocked(courierID int64) *room {
	r, ok := h.rooms[courierID]
	if !ok {
		r = &room{
			clients:    make(map[sink]struct{}),
			vibrations: make(map[notify.VibrationHandle]*vibration),
		}
		h.rooms[courierID] = r
	}
	return r
}

// Add registers s and replays the current alert state to it.
func (h *Hub) Add(courierID int64, s sink) {
	h.mu.Lock()
	r := h.roomLocked(courierID)
	r.clients[s] = struct{}{}
	replay := make([]command, 0, 1+len(r.vibrations))
	if r.playing {
		replay = append(replay, command{Type: TypePlayLoop})
	}
	for handle, v := range r.vibrations {
		replay = append(replay, command{Type: TypeVibrate, Handle: handle, PatternMs: v.pattern})
	}
	h.mu.Unlock()

	for _, c := range replay {
		h.send(courierID, s, c)
	}
}

// Remove unregisters s.
func (h *Hub) Remove(courierID int64, s sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[courierID]
	if !ok {
		return
	}
	delete(r.clients, s)
	if len(r.clients) == 0 && !r.playing && len(r.vibrations) == 0 {
		delete(h.rooms, courierID)
	}
}

// Clients returns the number of connected devices of a courier.
func (h *Hub) Clients(courierID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[courierID]; ok {
		return len(r.clients)
	}
	return 0
}

// Broadcast sends msg to every device of a courier.
func (h *Hub) Broadcast(courierID int64, msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("ws marshal failed", logx.Int64("courier_id", courierID), logx.Err(err))
		return
	}

	h.mu.Lock()
	var targets []sink
	if r, ok := h.rooms[courierID]; ok {
		targets = make([]sink, 0, len(r.clients))
		for c := range r.clients {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.Send(b); err != nil {
			h.logger.Debug("ws send failed", logx.Int64("courier_id", courierID), logx.Err(err))
		}
	}
}

func (h *Hub) send(courierID int64, s sink, msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.Send(b); err != nil {
		h.logger.Debug("ws send failed", logx.Int64("courier_id", courierID), logx.Err(err))
	}
}

// Frames returns a frame sink for a courier's tracker.
func (h *Hub) Frames(courierID int64) func(tracking.Frame) {
	return func(f tracking.Frame) {
		h.Broadcast(courierID, frameMessage{Type: TypeFrame, Frame: f})
	}
}

// AlertDriver returns the alert driver of a courier.
func (h *Hub) AlertDriver(courierID int64) notify.AlertDriver {
	return &alertDriver{hub: h, courierID: courierID}
}

// Close stops every running vibration.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.rooms {
		for handle, v := range r.vibrations {
			close(v.done)
			delete(r.vibrations, handle)
		}
	}
}

type alertDriver struct {
	hub       *Hub
	courierID int64
}

func (d *alertDriver) PlayLoop() {
	d.hub.mu.Lock()
	d.hub.roomLocked(d.courierID).playing = true
	d.hub.mu.Unlock()
	d.hub.Broadcast(d.courierID, command{Type: TypePlayLoop})
}

func (d *alertDriver) Stop() {
	d.hub.mu.Lock()
	if r, ok := d.hub.rooms[d.courierID]; ok {
		r.playing = false
	}
	d.hub.mu.Unlock()
	d.hub.Broadcast(d.courierID, command{Type: TypeStop})
}

// StartVibration repeats the pattern on every device until StopVibration is called with the returned handle.
func (d *alertDriver) StartVibration(pattern []time.Duration) notify.VibrationHandle {
	handle := notify.VibrationHandle(uuid.NewString())
	ms := make([]int64, 0, len(pattern))
	var cycle time.Duration
	for _, p := range pattern {
		ms = append(ms, p.Milliseconds())
		cycle += p
	}
	if cycle <= 0 {
		cycle = time.Second
	}
	v := &vibration{pattern: ms, done: make(chan struct{}), exited: make(chan struct{})}

	d.hub.mu.Lock()
	d.hub.roomLocked(d.courierID).vibrations[handle] = v
	d.hub.mu.Unlock()

	cmd := command{Type: TypeVibrate, Handle: handle, PatternMs: ms}
	d.hub.Broadcast(d.courierID, cmd)
	go func() {
		defer close(v.exited)
		t := time.NewTicker(cycle)
		defer t.Stop()
		for {
			select {
			case <-v.done:
				return
			case <-t.C:
				d.hub.Broadcast(d.courierID, cmd)
			}
		}
	}()
	return handle
}

func (d *alertDriver) StopVibration(handle notify.VibrationHandle) {
	d.hub.mu.Lock()
	r, ok := d.hub.rooms[d.courierID]
	var v *vibration
	if ok {
		v = r.vibrations[handle]
		delete(r.vibrations, handle)
	}
	d.hub.mu.Unlock()
	if v == nil {
		return
	}
	close(v.done)
	<-v.exited
	d.hub.Broadcast(d.courierID, command{Type: TypeStopVibration, Handle: handle})
}
