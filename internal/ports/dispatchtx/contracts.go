package dispatchtx

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Repository is the transactional view of orders, couriers and the order log.
// Get* methods lock the row for the rest of the transaction and return nil, nil when it is missing.
type Repository interface {
	GetOrderForUpdate(ctx context.Context, id string) (*domain.DeliveryOrder, error)
	UpdateOrder(ctx context.Context, o *domain.DeliveryOrder) error
	GetCourierForUpdate(ctx context.Context, id int64) (*domain.Courier, error)
	UpdateCourier(ctx context.Context, c *domain.Courier) error
	CreateLog(ctx context.Context, e domain.HistoryEntry) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
