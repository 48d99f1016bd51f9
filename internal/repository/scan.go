package repository

import (
	"time"

	"github.com/jackc/pgx/v5"

	"courier-dispatch/internal/domain"
)

const orderColumns = `
    id, status, courier_id, pickup_code, delivery_code,
    store_address, store_lat, store_lng, address, customer_lat, customer_lng,
    customer_name, customer_phone, delivery_fee,
    created_at, accepted_at, picked_up_at, delivered_at, cancelled_at,
    cancel_reason, rejection_reason`

const courierColumns = `
    id, name, phone, status, transport_type, current_order_id,
    total_deliveries, total_earnings, last_lat, last_lng, last_fix_at`

func scanOrder(row pgx.Row) (*domain.DeliveryOrder, error) {
	var (
		o                        domain.DeliveryOrder
		storeLat, storeLng       *float64
		customerLat, customerLng *float64
	)
	err := row.Scan(
		&o.ID, &o.Status, &o.CourierID, &o.PickupCode, &o.DeliveryCode,
		&o.StoreAddress, &storeLat, &storeLng, &o.Address, &customerLat, &customerLng,
		&o.CustomerName, &o.CustomerPhone, &o.DeliveryFee,
		&o.CreatedAt, &o.AcceptedAt, &o.PickedUpAt, &o.DeliveredAt, &o.CancelledAt,
		&o.CancelReason, &o.RejectionReason,
	)
	if err != nil {
		return nil, err
	}
	o.StoreCoordinates = coordinates(storeLat, storeLng)
	o.CustomerCoordinates = coordinates(customerLat, customerLng)
	o.CreatedAt = o.CreatedAt.UTC()
	for _, t := range []*time.Time{o.AcceptedAt, o.PickedUpAt, o.DeliveredAt, o.CancelledAt} {
		if t != nil {
			*t = t.UTC()
		}
	}
	return &o, nil
}

func scanCourier(row pgx.Row) (*domain.Courier, error) {
	var (
		c        domain.Courier
		lat, lng *float64
		fixAt    *time.Time
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Phone, &c.Status, &c.TransportType, &c.CurrentOrderID,
		&c.TotalDeliveries, &c.TotalEarnings, &lat, &lng, &fixAt,
	)
	if err != nil {
		return nil, err
	}
	if p := coordinates(lat, lng); p != nil && fixAt != nil {
		c.LastKnownPosition = &domain.Fix{Coordinates: *p, At: fixAt.UTC()}
	}
	return &c, nil
}

func coordinates(lat, lng *float64) *domain.Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &domain.Coordinates{Lat: *lat, Lng: *lng}
}

func latLng(c *domain.Coordinates) (*float64, *float64) {
	if c == nil {
		return nil, nil
	}
	lat, lng := c.Lat, c.Lng
	return &lat, &lng
}
