package lifecycle

import (
	"fmt"
	"time"

	"courier-dispatch/internal/domain"
)

// DefaultLateAfter is how long an unfinished order may run before it counts as late.
const DefaultLateAfter = 30 * time.Minute

// Elapsed returns a humanized bucket for the time since the order was created.
func Elapsed(o *domain.DeliveryOrder, now time.Time) string {
	d := now.Sub(o.CreatedAt)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min", int(d/time.Minute))
	case d < 24*time.Hour:
		h := int(d / time.Hour)
		m := int((d % time.Hour) / time.Minute)
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %02dm", h, m)
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

// IsLate reports whether a non-terminal order has been running for longer than lateAfter.
func IsLate(o *domain.DeliveryOrder, now time.Time, lateAfter time.Duration) bool {
	if lateAfter <= 0 {
		lateAfter = DefaultLateAfter
	}
	return !o.Status.Terminal() && now.Sub(o.CreatedAt) > lateAfter
}
