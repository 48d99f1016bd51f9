package lifecycle

import "courier-dispatch/internal/domain"

// Event is a courier action on a delivery.
type Event string

// Lifecycle events.
const (
	EventAccept              Event = "accept"
	EventReject              Event = "reject"
	EventArrivedAtStore      Event = "arrived_at_store"
	EventConfirmPickupCode   Event = "confirm_pickup_code"
	EventDepart              Event = "depart"
	EventArrivedAtCustomer   Event = "arrived_at_customer"
	EventConfirmDeliveryCode Event = "confirm_delivery_code"
	EventCancel              Event = "cancel"
)

type edge struct {
	from domain.OrderStatus
	to   domain.OrderStatus
}

// transitions lists, per event, the states it may fire from and where it leads.
// Reject keeps the order on offer; only the courier's queue item goes away.
var transitions = map[Event][]edge{
	EventAccept:              {{domain.OrderOffered, domain.OrderGoingToStore}},
	EventReject:              {{domain.OrderOffered, domain.OrderOffered}},
	EventArrivedAtStore:      {{domain.OrderGoingToStore, domain.OrderArrivedAtStore}},
	EventConfirmPickupCode:   {{domain.OrderArrivedAtStore, domain.OrderPickedUp}},
	EventDepart:              {{domain.OrderPickedUp, domain.OrderOutForDelivery}},
	EventArrivedAtCustomer:   {{domain.OrderOutForDelivery, domain.OrderArrivedAtCustomer}},
	EventConfirmDeliveryCode: {{domain.OrderArrivedAtCustomer, domain.OrderDelivered}},
	EventCancel: {
		{domain.OrderGoingToStore, domain.OrderCancelled},
		{domain.OrderArrivedAtStore, domain.OrderCancelled},
		{domain.OrderPickedUp, domain.OrderCancelled},
		{domain.OrderOutForDelivery, domain.OrderCancelled},
		{domain.OrderArrivedAtCustomer, domain.OrderCancelled},
	},
}

// next returns the state event leads to from the given state.
func next(ev Event, from domain.OrderStatus) (domain.OrderStatus, bool) {
	for _, e := range transitions[ev] {
		if e.from == from {
			return e.to, true
		}
	}
	return "", false
}

// target returns the state an event always ends in, used to recognise repeated requests.
func target(ev Event) (domain.OrderStatus, bool) {
	edges := transitions[ev]
	if len(edges) == 0 || ev == EventReject {
		return "", false
	}
	return edges[0].to, true
}

// Allowed reports whether ev may fire from status.
func Allowed(ev Event, status domain.OrderStatus) bool {
	_, ok := next(ev, status)
	return ok
}

// needsReason lists events that require a non-empty reason.
func needsReason(ev Event) bool {
	return ev == EventReject || ev == EventCancel
}
