package domain

import "regexp"

// List of possible courier statuses
const (
	StatusAvailable CourierStatus = "available"
	StatusBusy      CourierStatus = "busy"
	StatusOffline   CourierStatus = "offline"
	StatusPaused    CourierStatus = "paused"
)

// List of possible courier transport types
const (
	TransportTypeFoot    CourierTransportType = "on_foot"
	TransportTypeScooter CourierTransportType = "scooter"
	TransportTypeCar     CourierTransportType = "car"
)

var allowedStatuses = [...]CourierStatus{
	StatusAvailable, StatusBusy, StatusOffline, StatusPaused,
}

var allowedTransportTypes = [...]CourierTransportType{
	TransportTypeFoot, TransportTypeScooter, TransportTypeCar,
}

// Valid checks if the CourierStatus is valid
func (s CourierStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the CourierTransportType is valid
func (t CourierTransportType) Valid() bool {
	for _, v := range allowedTransportTypes {
		if t == v {
			return true
		}
	}
	return false
}

// OrderStatus is a state of the delivery lifecycle.
type OrderStatus string

// Delivery lifecycle states.
const (
	OrderOffered           OrderStatus = "offered"
	OrderGoingToStore      OrderStatus = "going_to_store"
	OrderArrivedAtStore    OrderStatus = "arrived_at_store"
	OrderPickedUp          OrderStatus = "picked_up"
	OrderOutForDelivery    OrderStatus = "out_for_delivery"
	OrderArrivedAtCustomer OrderStatus = "arrived_at_customer"
	OrderDelivered         OrderStatus = "delivered"
	OrderCancelled         OrderStatus = "cancelled"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderOffered, OrderGoingToStore, OrderArrivedAtStore, OrderPickedUp,
	OrderOutForDelivery, OrderArrivedAtCustomer, OrderDelivered, OrderCancelled,
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// BeforePickup reports whether the courier still heads to the store.
func (s OrderStatus) BeforePickup() bool {
	switch s {
	case OrderOffered, OrderGoingToStore, OrderArrivedAtStore:
		return true
	default:
		return false
	}
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{11}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
