package notify

import (
	"sync"
	"time"
)

// DefaultVibrationPattern alternates vibrate and pause durations.
var DefaultVibrationPattern = []time.Duration{
	500 * time.Millisecond, 200 * time.Millisecond, 500 * time.Millisecond, 1000 * time.Millisecond,
}

// Alerts keeps the driver signalling exactly while the queue has pending items.
type Alerts struct {
	driver  AlertDriver
	pattern []time.Duration

	mu      sync.Mutex
	playing bool
	handle  VibrationHandle
}

// NewAlerts creates an Alerts. A nil driver disables alerting.
func NewAlerts(driver AlertDriver, pattern []time.Duration) *Alerts {
	if len(pattern) == 0 {
		pattern = DefaultVibrationPattern
	}
	return &Alerts{driver: driver, pattern: pattern}
}

// Sync starts alerts when pending turns positive and stops them when it drops to zero.
func (a *Alerts) Sync(pending int) {
	if a == nil || a.driver == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case pending > 0 && !a.playing:
		a.driver.PlayLoop()
		a.handle = a.driver.StartVibration(a.pattern)
		a.playing = true
	case pending == 0 && a.playing:
		a.driver.Stop()
		a.driver.StopVibration(a.handle)
		a.handle = ""
		a.playing = false
	}
}

// Active reports whether alerts are running.
func (a *Alerts) Active() bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}
