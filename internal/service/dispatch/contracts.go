//go:generate mockgen -source=contracts.go -destination=dispatch_mocks_test.go -package=dispatch_test

package dispatch

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Store is the part of the order store the dispatcher feed writes to.
type Store interface {
	// UpsertOffer puts an order on offer. It returns false when the order exists and is no longer offered.
	UpsertOffer(ctx context.Context, o *domain.DeliveryOrder) (bool, error)
	// WithdrawOffer cancels an order that is still on offer. It returns false when there was nothing to withdraw.
	WithdrawOffer(ctx context.Context, orderID, reason string) (bool, error)
	// InsertMessage stores an administrative message; a duplicate id yields apperr.ErrConflict.
	InsertMessage(ctx context.Context, m *domain.AdminMessage) error
}
