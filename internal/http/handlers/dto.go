package handlers

import (
	"time"

	"courier-dispatch/internal/domain"
)

type courierDTO struct {
	ID                int64                       `json:"id"`
	Name              string                      `json:"name"`
	Phone             string                      `json:"phone"`
	Status            domain.CourierStatus        `json:"status"`
	TransportType     domain.CourierTransportType `json:"transport_type"`
	CurrentOrderID    *string                     `json:"current_order_id,omitempty"`
	TotalDeliveries   int64                       `json:"total_deliveries"`
	TotalEarnings     int64                       `json:"total_earnings"`
	LastKnownPosition *domain.Fix                 `json:"last_known_position,omitempty"`
}

type createCourierRequest struct {
	Name          string                      `json:"name"`
	Phone         string                      `json:"phone"`
	Status        domain.CourierStatus        `json:"status"`
	TransportType domain.CourierTransportType `json:"transport_type"`
}

type updateCourierRequest struct {
	Name          *string                      `json:"name,omitempty"`
	Phone         *string                      `json:"phone,omitempty"`
	Status        *domain.CourierStatus        `json:"status,omitempty"`
	TransportType *domain.CourierTransportType `json:"transport_type,omitempty"`
}

type orderDTO struct {
	ID                  string              `json:"id"`
	Status              domain.OrderStatus  `json:"status"`
	CourierID           *int64              `json:"courier_id,omitempty"`
	StoreAddress        string              `json:"store_address"`
	StoreCoordinates    *domain.Coordinates `json:"store_coordinates,omitempty"`
	Address             string              `json:"address"`
	CustomerCoordinates *domain.Coordinates `json:"customer_coordinates,omitempty"`
	CustomerName        string              `json:"customer_name"`
	CustomerPhone       string              `json:"customer_phone"`
	DeliveryFee         int64               `json:"delivery_fee"`
	CreatedAt           time.Time           `json:"created_at"`
	AcceptedAt          *time.Time          `json:"accepted_at,omitempty"`
	PickedUpAt          *time.Time          `json:"picked_up_at,omitempty"`
	DeliveredAt         *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt         *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason        string              `json:"cancel_reason,omitempty"`
	RejectionReason     string              `json:"rejection_reason,omitempty"`
}

type orderEventRequest struct {
	CourierID int64  `json:"courier_id"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type transitionResponse struct {
	Order  orderDTO `json:"order"`
	Noop   bool     `json:"noop"`
	LogID  string   `json:"log_id,omitempty"`
	Action string   `json:"action,omitempty"`
}

type orderStatusResponse struct {
	OrderID string             `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
	Elapsed string             `json:"elapsed"`
	IsLate  bool               `json:"is_late"`
}

type planRouteRequest struct {
	Start    domain.Coordinates `json:"start"`
	OrderIDs []string           `json:"order_ids"`
}

type routeStopDTO struct {
	OrderID     string             `json:"order_id"`
	Address     string             `json:"address"`
	Coordinates domain.Coordinates `json:"coordinates"`
	Approximate bool               `json:"approximate"`
	HopKm       float64            `json:"hop_km"`
}

type routePlanResponse struct {
	Stops            []routeStopDTO `json:"stops"`
	TotalDistanceKm  float64        `json:"total_distance_km"`
	EstimatedMinutes int            `json:"estimated_minutes"`
	Approximate      bool           `json:"approximate"`
}

type sessionResponse struct {
	CourierID int64 `json:"courier_id"`
	Started   bool  `json:"started"`
}

type positionsRequest struct {
	Fixes []domain.Fix `json:"fixes"`
}

type positionsResponse struct {
	Accepted bool `json:"accepted"`
}

type notificationDTO struct {
	ID         string                  `json:"id"`
	Kind       domain.NotificationKind `json:"kind"`
	EnqueuedAt time.Time               `json:"enqueued_at"`
	Offer      *offerDTO               `json:"offer,omitempty"`
	Message    *domain.AdminMessage    `json:"message,omitempty"`
}

type offerDTO struct {
	OrderID   string    `json:"order_id"`
	Order     orderDTO  `json:"order"`
	OfferedAt time.Time `json:"offered_at"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}
