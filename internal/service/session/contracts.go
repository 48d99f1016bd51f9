package session

import (
	"context"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/notify"
	"courier-dispatch/internal/service/tracking"
)

// OfferSource lists orders on offer that the courier has not rejected yet.
type OfferSource interface {
	ListOffers(ctx context.Context, courierID int64, limit int) ([]domain.DeliveryOrder, error)
}

// MessageSource lists administrative messages the courier has not confirmed yet.
type MessageSource interface {
	ListPendingMessages(ctx context.Context, courierID int64) ([]domain.AdminMessage, error)
}

type courierGetter interface {
	GetCourier(ctx context.Context, id int64) (*domain.Courier, error)
}

// Outlet delivers session output to the courier's device.
type Outlet interface {
	AlertDriver(courierID int64) notify.AlertDriver
	Frames(courierID int64) func(tracking.Frame)
}
