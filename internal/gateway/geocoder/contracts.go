//go:generate mockgen -source=contracts.go -destination=geocoder_mocks_test.go -package=geocoder_test

package geocoder

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Geocoder resolves an address. A nil result without error means no match.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Coordinates, error)
}

// Cache persists resolved addresses.
type Cache interface {
	Get(ctx context.Context, address string) (*domain.Coordinates, error)
	Put(ctx context.Context, address string, p domain.Coordinates) error
}

type counter interface {
	Inc()
}
