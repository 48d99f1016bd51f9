package route

import (
	"context"
	"fmt"
	"strings"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
)

// Resolver turns orders into route stops with coordinates.
type Resolver struct {
	geocoder Geocoder
	fallback geo.Fallback
	logger   logx.Logger
}

// NewResolver creates a Resolver. geocoder may be nil, in which case every missing coordinate
// falls back to the jittered placeholder.
func NewResolver(geocoder Geocoder, fallback geo.Fallback, logger logx.Logger) *Resolver {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Resolver{geocoder: geocoder, fallback: fallback, logger: logger}
}

// Resolve builds one stop per order, in input order. Geocoding failures never fail the call:
// the stop gets fallback coordinates and is marked Approximate.
func (r *Resolver) Resolve(ctx context.Context, orders []domain.DeliveryOrder) []domain.RouteStop {
	stops := make([]domain.RouteStop, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		coords, address := o.Target()
		stop := domain.RouteStop{OrderID: o.ID, Address: address}
		if coords != nil && geo.Valid(*coords) {
			stop.Coordinates = *coords
		} else {
			stop.Coordinates, stop.Approximate = r.lookup(ctx, o.ID, address)
		}
		stops = append(stops, stop)
	}
	return stops
}

func (r *Resolver) lookup(ctx context.Context, orderID, address string) (domain.Coordinates, bool) {
	if r.geocoder == nil || strings.TrimSpace(address) == "" {
		return r.fallback.Coordinates(address), true
	}
	c, err := r.geocode(ctx, address)
	if err == nil {
		return c, false
	}
	r.logger.Warn("geocode unavailable, using fallback",
		logx.String("event", "geocode_fallback"),
		logx.String("order_id", orderID),
		logx.String("address", address),
		logx.Err(err),
	)
	return r.fallback.Coordinates(address), true
}

func (r *Resolver) geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	c, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %w", apperr.ErrGeocodeUnavailable, err)
	}
	if c == nil || !geo.Valid(*c) {
		return domain.Coordinates{}, apperr.ErrGeocodeUnavailable
	}
	return *c, nil
}
