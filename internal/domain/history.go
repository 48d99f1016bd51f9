package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// HistoryAction names what happened to an order.
type HistoryAction string

// History actions.
const (
	ActionCreated   HistoryAction = "created"
	ActionUpdated   HistoryAction = "updated"
	ActionRejected  HistoryAction = "rejected"
	ActionClosed    HistoryAction = "closed"
	ActionCancelled HistoryAction = "cancelled"
)

// HistoryDetails is the action specific payload of a HistoryEntry.
// Implementations are CreatedDetails, UpdatedDetails, RejectedDetails, ClosedDetails and CancelledDetails.
type HistoryDetails interface {
	Action() HistoryAction
}

// CreatedDetails is recorded when a courier accepts an offer.
type CreatedDetails struct {
	CourierID int64 `json:"courier_id"`
}

// UpdatedDetails is recorded on intermediate transitions.
type UpdatedDetails struct {
	From  OrderStatus `json:"from"`
	To    OrderStatus `json:"to"`
	Event string      `json:"event"`
}

// RejectedDetails is recorded when a courier declines an offer.
type RejectedDetails struct {
	CourierID int64  `json:"courier_id"`
	Reason    string `json:"reason"`
}

// ClosedDetails is recorded when the order is delivered.
type ClosedDetails struct {
	DeliveryFee int64         `json:"delivery_fee"`
	Duration    time.Duration `json:"duration"`
}

// CancelledDetails is recorded when the order is cancelled.
type CancelledDetails struct {
	From   OrderStatus `json:"from"`
	Reason string      `json:"reason"`
}

func (CreatedDetails) Action() HistoryAction   { return ActionCreated }
func (UpdatedDetails) Action() HistoryAction   { return ActionUpdated }
func (RejectedDetails) Action() HistoryAction  { return ActionRejected }
func (ClosedDetails) Action() HistoryAction    { return ActionClosed }
func (CancelledDetails) Action() HistoryAction { return ActionCancelled }

// HistoryEntry is an audit record of a lifecycle event.
type HistoryEntry struct {
	ID        string
	OrderID   string
	CourierID *int64
	At        time.Time
	Details   HistoryDetails
}

// Action returns the entry's action or an empty string when details are missing.
func (e HistoryEntry) Action() HistoryAction {
	if e.Details == nil {
		return ""
	}
	return e.Details.Action()
}

type historyEntryJSON struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	CourierID *int64          `json:"courier_id,omitempty"`
	At        time.Time       `json:"at"`
	Action    HistoryAction   `json:"action"`
	Details   json.RawMessage `json:"details"`
}

// MarshalJSON writes the action tag next to the details.
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(e.Details)
	if err != nil {
		return nil, err
	}
	return json.Marshal(historyEntryJSON{
		ID:        e.ID,
		OrderID:   e.OrderID,
		CourierID: e.CourierID,
		At:        e.At,
		Action:    e.Action(),
		Details:   raw,
	})
}

// UnmarshalJSON decodes details according to the action tag.
func (e *HistoryEntry) UnmarshalJSON(b []byte) error {
	var w historyEntryJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	details, err := DecodeHistoryDetails(w.Action, w.Details)
	if err != nil {
		return err
	}
	*e = HistoryEntry{ID: w.ID, OrderID: w.OrderID, CourierID: w.CourierID, At: w.At, Details: details}
	return nil
}

// DecodeHistoryDetails decodes raw details for the given action.
func DecodeHistoryDetails(action HistoryAction, raw []byte) (HistoryDetails, error) {
	var d HistoryDetails
	switch action {
	case ActionCreated:
		var v CreatedDetails
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		d = v
	case ActionUpdated:
		var v UpdatedDetails
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		d = v
	case ActionRejected:
		var v RejectedDetails
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		d = v
	case ActionClosed:
		var v ClosedDetails
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		d = v
	case ActionCancelled:
		var v CancelledDetails
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		d = v
	default:
		return nil, fmt.Errorf("unknown history action %q", action)
	}
	return d, nil
}
