package domain

import "time"

// DeliveryOrder is one courier-assigned delivery.
type DeliveryOrder struct {
	ID                  string
	Status              OrderStatus
	CourierID           *int64
	PickupCode          string
	DeliveryCode        string
	StoreAddress        string
	StoreCoordinates    *Coordinates
	Address             string
	CustomerCoordinates *Coordinates
	CustomerName        string
	CustomerPhone       string
	DeliveryFee         int64
	CreatedAt           time.Time
	AcceptedAt          *time.Time
	PickedUpAt          *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time
	CancelReason        string
	RejectionReason     string
}

// Clone returns a deep copy so callers can mutate without aliasing pointers.
func (o *DeliveryOrder) Clone() *DeliveryOrder {
	if o == nil {
		return nil
	}
	cp := *o
	cp.CourierID = clonePtr(o.CourierID)
	cp.StoreCoordinates = clonePtr(o.StoreCoordinates)
	cp.CustomerCoordinates = clonePtr(o.CustomerCoordinates)
	cp.AcceptedAt = clonePtr(o.AcceptedAt)
	cp.PickedUpAt = clonePtr(o.PickedUpAt)
	cp.DeliveredAt = clonePtr(o.DeliveredAt)
	cp.CancelledAt = clonePtr(o.CancelledAt)
	return &cp
}

// Target returns where the courier has to go next for this order and the address to geocode
// when coordinates are missing.
func (o *DeliveryOrder) Target() (*Coordinates, string) {
	if o.Status.BeforePickup() {
		return o.StoreCoordinates, o.StoreAddress
	}
	return o.CustomerCoordinates, o.Address
}

// OrderFilter narrows ListOrders results. Zero fields are ignored.
type OrderFilter struct {
	IDs       []string
	Statuses  []OrderStatus
	CourierID *int64
	// Unassigned limits results to orders without a courier.
	Unassigned bool
	Limit      int
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
