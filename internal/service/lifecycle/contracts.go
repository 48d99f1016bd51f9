package lifecycle

import (
	"context"

	"courier-dispatch/internal/domain"
)

type orderGetter interface {
	GetOrder(ctx context.Context, id string) (*domain.DeliveryOrder, error)
}

// HistoryPublisher ships committed history entries to other systems.
type HistoryPublisher interface {
	Publish(ctx context.Context, e domain.HistoryEntry) error
}
