package tracking

import (
	"sync"

	"courier-dispatch/internal/domain"
)

// DefaultTrailSize is how many rendered positions the trail keeps.
const DefaultTrailSize = 20

// Trail is a fixed-size ring of recent positions. Pushing past capacity evicts the oldest.
type Trail struct {
	mu    sync.Mutex
	buf   []domain.Coordinates
	start int
	size  int
}

// NewTrail creates a Trail holding at most capacity positions.
func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultTrailSize
	}
	return &Trail{buf: make([]domain.Coordinates, capacity)}
}

// Push appends p.
func (t *Trail) Push(p domain.Coordinates) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.size < len(t.buf) {
		t.buf[(t.start+t.size)%len(t.buf)] = p
		t.size++
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % len(t.buf)
}

// Points returns positions oldest first.
func (t *Trail) Points() []domain.Coordinates {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Coordinates, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}

// Len returns the number of stored positions.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Cap returns the capacity.
func (t *Trail) Cap() int { return len(t.buf) }
