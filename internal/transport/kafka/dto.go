package kafka

import (
	"strings"
	"time"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/dispatch"
)

// CoordinatesDTO is a lat/lng pair on the wire.
type CoordinatesDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OrderDTO is an offered order as published by the dispatcher.
type OrderDTO struct {
	ID                  string          `json:"id"`
	PickupCode          string          `json:"pickup_code,omitempty"`
	DeliveryCode        string          `json:"delivery_code,omitempty"`
	StoreAddress        string          `json:"store_address"`
	StoreCoordinates    *CoordinatesDTO `json:"store_coordinates,omitempty"`
	Address             string          `json:"address"`
	CustomerCoordinates *CoordinatesDTO `json:"customer_coordinates,omitempty"`
	CustomerName        string          `json:"customer_name"`
	CustomerPhone       string          `json:"customer_phone"`
	DeliveryFee         int64           `json:"delivery_fee"`
	CreatedAt           time.Time       `json:"created_at"`
}

// MessageDTO is an administrative message.
type MessageDTO struct {
	MessageID string    `json:"message_id"`
	CourierID int64     `json:"courier_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// EventDTO is a data transfer object for dispatch.Event.
type EventDTO struct {
	Kind       string      `json:"kind"`
	OrderID    string      `json:"order_id,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Order      *OrderDTO   `json:"order,omitempty"`
	Message    *MessageDTO `json:"message,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// ToDomain converts EventDTO to dispatch.Event.
func ToDomain(dto EventDTO) dispatch.Event {
	e := dispatch.Event{
		Kind:       strings.ToLower(strings.TrimSpace(dto.Kind)),
		OrderID:    strings.TrimSpace(dto.OrderID),
		Reason:     strings.TrimSpace(dto.Reason),
		OccurredAt: dto.OccurredAt,
	}
	if o := dto.Order; o != nil {
		e.Order = &domain.DeliveryOrder{
			ID:                  strings.TrimSpace(o.ID),
			PickupCode:          strings.TrimSpace(o.PickupCode),
			DeliveryCode:        strings.TrimSpace(o.DeliveryCode),
			StoreAddress:        strings.TrimSpace(o.StoreAddress),
			StoreCoordinates:    o.StoreCoordinates.toDomain(),
			Address:             strings.TrimSpace(o.Address),
			CustomerCoordinates: o.CustomerCoordinates.toDomain(),
			CustomerName:        strings.TrimSpace(o.CustomerName),
			CustomerPhone:       strings.TrimSpace(o.CustomerPhone),
			DeliveryFee:         o.DeliveryFee,
			CreatedAt:           o.CreatedAt,
		}
		if e.OrderID == "" {
			e.OrderID = e.Order.ID
		}
	}
	if m := dto.Message; m != nil {
		e.Message = &domain.AdminMessage{
			MessageID: strings.TrimSpace(m.MessageID),
			CourierID: m.CourierID,
			Title:     strings.TrimSpace(m.Title),
			Body:      m.Body,
			Priority:  domain.MessagePriority(strings.ToLower(strings.TrimSpace(m.Priority))),
			CreatedAt: m.CreatedAt,
		}
	}
	return e
}

func (c *CoordinatesDTO) toDomain() *domain.Coordinates {
	if c == nil {
		return nil
	}
	return &domain.Coordinates{Lat: c.Lat, Lng: c.Lng}
}
