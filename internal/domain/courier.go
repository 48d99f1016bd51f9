package domain

import "time"

type (
	// CourierStatus represents the status of a courier.
	CourierStatus string
	// CourierTransportType represents the transport type of a courier.
	CourierTransportType string
)

// Coordinates is a geographic point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Fix is a single GPS position sample.
type Fix struct {
	Coordinates
	At time.Time `json:"at"`
}

// Courier represents a delivery courier.
type Courier struct {
	ID                int64
	Name              string
	Phone             string
	Status            CourierStatus
	TransportType     CourierTransportType
	CurrentOrderID    *string
	TotalDeliveries   int64
	TotalEarnings     int64
	LastKnownPosition *Fix
}

// Busy reports whether the courier holds an active order.
func (c *Courier) Busy() bool {
	return c.Status == StatusBusy && c.CurrentOrderID != nil
}

// PartialCourierUpdate carries the courier fields a profile update may change. Nil fields stay as they are.
type PartialCourierUpdate struct {
	ID            int64
	Name          *string
	Phone         *string
	Status        *CourierStatus
	TransportType *CourierTransportType
}
