//go:generate mockgen -source=contracts.go -destination=route_mocks_test.go -package=route_test

package route

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Geocoder resolves an address. A nil result without error means no match.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Coordinates, error)
}

type orderReader interface {
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error)
}
