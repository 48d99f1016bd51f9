package dispatch

import (
	"time"

	"courier-dispatch/internal/domain"
)

// Dispatcher event kinds.
const (
	KindOrderOffered   = "order_offered"
	KindOrderWithdrawn = "order_withdrawn"
	KindAdminMessage   = "admin_message"
)

// Event is a single dispatcher event.
type Event struct {
	Kind       string
	Order      *domain.DeliveryOrder
	Message    *domain.AdminMessage
	OrderID    string
	Reason     string
	OccurredAt time.Time
}
