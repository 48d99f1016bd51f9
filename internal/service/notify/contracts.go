package notify

import (
	"context"
	"time"

	"courier-dispatch/internal/service/lifecycle"
)

//go:generate mockgen -source=contracts.go -destination=notify_mocks_test.go -package=notify_test

// VibrationHandle identifies a running vibration pattern.
type VibrationHandle string

// AlertDriver plays the device alerts. Calls are fire-and-forget.
type AlertDriver interface {
	PlayLoop()
	Stop()
	StartVibration(pattern []time.Duration) VibrationHandle
	StopVibration(h VibrationHandle)
}

// OfferResolver applies the lifecycle side of an offer decision.
type OfferResolver interface {
	Accept(ctx context.Context, orderID string, courierID int64) (lifecycle.Result, error)
	Reject(ctx context.Context, orderID string, courierID int64, reason string) (lifecycle.Result, error)
}

// MessageAcker records that the courier confirmed an administrative message.
type MessageAcker interface {
	AckMessage(ctx context.Context, messageID string, courierID int64) error
}
