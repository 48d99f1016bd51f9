package handlers

import (
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/lifecycle"
)

func (req createCourierRequest) toModel() *domain.Courier {
	return &domain.Courier{
		Name:          req.Name,
		Phone:         req.Phone,
		Status:        req.Status,
		TransportType: req.TransportType,
	}
}

func (req updateCourierRequest) toModel(id int64) domain.PartialCourierUpdate {
	return domain.PartialCourierUpdate{
		ID:            id,
		Name:          req.Name,
		Phone:         req.Phone,
		Status:        req.Status,
		TransportType: req.TransportType,
	}
}

func courierToResponse(c domain.Courier) courierDTO {
	return courierDTO{
		ID:                c.ID,
		Name:              c.Name,
		Phone:             c.Phone,
		Status:            c.Status,
		TransportType:     c.TransportType,
		CurrentOrderID:    c.CurrentOrderID,
		TotalDeliveries:   c.TotalDeliveries,
		TotalEarnings:     c.TotalEarnings,
		LastKnownPosition: c.LastKnownPosition,
	}
}

func couriersToResponse(list []domain.Courier) []courierDTO {
	out := make([]courierDTO, 0, len(list))
	for _, c := range list {
		out = append(out, courierToResponse(c))
	}
	return out
}

// orderToResponse never exposes pickup and delivery codes.
func orderToResponse(o domain.DeliveryOrder) orderDTO {
	return orderDTO{
		ID:                  o.ID,
		Status:              o.Status,
		CourierID:           o.CourierID,
		StoreAddress:        o.StoreAddress,
		StoreCoordinates:    o.StoreCoordinates,
		Address:             o.Address,
		CustomerCoordinates: o.CustomerCoordinates,
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		DeliveryFee:         o.DeliveryFee,
		CreatedAt:           o.CreatedAt,
		AcceptedAt:          o.AcceptedAt,
		PickedUpAt:          o.PickedUpAt,
		DeliveredAt:         o.DeliveredAt,
		CancelledAt:         o.CancelledAt,
		CancelReason:        o.CancelReason,
		RejectionReason:     o.RejectionReason,
	}
}

func resultToResponse(res lifecycle.Result) transitionResponse {
	out := transitionResponse{Order: orderToResponse(res.Order), Noop: res.Noop}
	if res.Entry != nil {
		out.LogID = res.Entry.ID
		out.Action = string(res.Entry.Action())
	}
	return out
}

func statusToResponse(v lifecycle.StatusView) orderStatusResponse {
	return orderStatusResponse{
		OrderID: v.Order.ID,
		Status:  v.Order.Status,
		Elapsed: v.Elapsed,
		IsLate:  v.IsLate,
	}
}

func planToResponse(p domain.RoutePlan) routePlanResponse {
	stops := make([]routeStopDTO, 0, len(p.OrderedStops))
	for _, s := range p.OrderedStops {
		stops = append(stops, routeStopDTO{
			OrderID:     s.OrderID,
			Address:     s.Address,
			Coordinates: s.Coordinates,
			Approximate: s.Approximate,
			HopKm:       s.HopKm,
		})
	}
	return routePlanResponse{
		Stops:            stops,
		TotalDistanceKm:  p.TotalDistanceKm,
		EstimatedMinutes: p.EstimatedMinutes,
		Approximate:      p.Approximate,
	}
}

func notificationsToResponse(items []domain.NotificationItem) []notificationDTO {
	out := make([]notificationDTO, 0, len(items))
	for _, it := range items {
		dto := notificationDTO{ID: it.ID, Kind: it.Kind, EnqueuedAt: it.EnqueuedAt, Message: it.Message}
		if it.Offer != nil {
			dto.Offer = &offerDTO{
				OrderID:   it.Offer.OrderID,
				Order:     orderToResponse(it.Offer.Snapshot),
				OfferedAt: it.Offer.OfferedAt,
			}
		}
		out = append(out, dto)
	}
	return out
}
