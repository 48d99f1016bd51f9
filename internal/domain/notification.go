package domain

import (
	"strings"
	"time"
)

type (
	// NotificationKind tells which resolve action a queued item needs.
	NotificationKind string
	// MessagePriority is the priority of an administrative message.
	MessagePriority string
)

// Notification kinds.
const (
	KindOrderOffer   NotificationKind = "order_offer"
	KindAdminMessage NotificationKind = "admin_message"
)

// Message priorities.
const (
	PriorityNormal MessagePriority = "normal"
	PriorityUrgent MessagePriority = "urgent"
)

// Valid checks if the MessagePriority is valid
func (p MessagePriority) Valid() bool {
	return p == PriorityNormal || p == PriorityUrgent
}

// Predefined reject reasons offered to the courier. Free text is accepted as well.
const (
	RejectTooFar        = "too_far"
	RejectLowFee        = "low_fee"
	RejectVehicleIssue  = "vehicle_issue"
	RejectEndingShift   = "ending_shift"
	RejectAlreadyLoaded = "already_loaded"
)

// RejectReasons lists the closed set of reject reasons.
var RejectReasons = []string{
	RejectTooFar, RejectLowFee, RejectVehicleIssue, RejectEndingShift, RejectAlreadyLoaded,
}

// OrderOffer is a proposed, not yet accepted assignment.
type OrderOffer struct {
	OrderID   string        `json:"order_id"`
	Snapshot  DeliveryOrder `json:"snapshot"`
	OfferedAt time.Time     `json:"offered_at"`
}

// AdminMessage must be confirmed by the courier.
type AdminMessage struct {
	MessageID string          `json:"message_id"`
	CourierID int64           `json:"courier_id"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Priority  MessagePriority `json:"priority"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationItem is a blocking item in the courier's queue. Exactly one of Offer and Message is set.
type NotificationItem struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	Seq        int64            `json:"seq"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
	Offer      *OrderOffer      `json:"offer,omitempty"`
	Message    *AdminMessage    `json:"message,omitempty"`
}

// NewOfferItem wraps an offer; the item id is derived from the order id.
func NewOfferItem(o OrderOffer) NotificationItem {
	return NotificationItem{ID: OfferItemID(o.OrderID), Kind: KindOrderOffer, Offer: &o}
}

// NewMessageItem wraps an admin message; the item id is derived from the message id.
func NewMessageItem(m AdminMessage) NotificationItem {
	return NotificationItem{ID: MessageItemID(m.MessageID), Kind: KindAdminMessage, Message: &m}
}

// OfferItemID returns the queue id of an offer for orderID.
func OfferItemID(orderID string) string { return "offer:" + strings.TrimSpace(orderID) }

// MessageItemID returns the queue id of an admin message.
func MessageItemID(messageID string) string { return "message:" + strings.TrimSpace(messageID) }

// Valid checks that the item carries the payload its kind requires.
func (i NotificationItem) Valid() bool {
	if strings.TrimSpace(i.ID) == "" {
		return false
	}
	switch i.Kind {
	case KindOrderOffer:
		return i.Offer != nil && i.Message == nil && strings.TrimSpace(i.Offer.OrderID) != ""
	case KindAdminMessage:
		return i.Message != nil && i.Offer == nil && strings.TrimSpace(i.Message.MessageID) != ""
	default:
		return false
	}
}
