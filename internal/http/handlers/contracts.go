package handlers

import (
	"context"
	"net/http"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/courier"
	"courier-dispatch/internal/service/lifecycle"
	"courier-dispatch/internal/service/route"
)

type courierUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	Create(ctx context.Context, c *domain.Courier) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) error
}

// NewCourierUsecase wires a courier Service into a courierUsecase.
func NewCourierUsecase(svc *courier.Service) courierUsecase {
	return svc
}

type lifecycleUsecase interface {
	ArrivedAtStore(ctx context.Context, orderID string, courierID int64) (lifecycle.Result, error)
	ConfirmPickupCode(ctx context.Context, orderID string, courierID int64, code string) (lifecycle.Result, error)
	Depart(ctx context.Context, orderID string, courierID int64) (lifecycle.Result, error)
	ArrivedAtCustomer(ctx context.Context, orderID string, courierID int64) (lifecycle.Result, error)
	ConfirmDeliveryCode(ctx context.Context, orderID string, courierID int64, code string) (lifecycle.Result, error)
	Cancel(ctx context.Context, orderID string, courierID int64, reason string) (lifecycle.Result, error)
	Status(ctx context.Context, orderID string) (lifecycle.StatusView, error)
}

// NewLifecycleUsecase wires a lifecycle Machine into a lifecycleUsecase.
func NewLifecycleUsecase(m *lifecycle.Machine) lifecycleUsecase {
	return m
}

type routePlanner interface {
	Plan(ctx context.Context, courierID int64, start domain.Coordinates, orderIDs []string) (domain.RoutePlan, error)
}

// NewRoutePlanner wires a route Planner into a routePlanner.
func NewRoutePlanner(p *route.Planner) routePlanner {
	return p
}

type sessionUsecase interface {
	Start(ctx context.Context, courierID int64) (bool, error)
	Stop(courierID int64) error
	Pending(courierID int64) ([]domain.NotificationItem, error)
	AcceptOffer(ctx context.Context, courierID int64, itemID string) error
	RejectOffer(ctx context.Context, courierID int64, itemID, reason string) error
	ConfirmMessage(ctx context.Context, courierID int64, itemID string) error
	ApplyFixes(ctx context.Context, courierID int64, fixes []domain.Fix) error
	Trail(courierID int64) ([]domain.Coordinates, error)
}

type trackStream interface {
	Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, courierID int64, origins []string)
}
