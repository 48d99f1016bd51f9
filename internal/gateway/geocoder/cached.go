package geocoder

import (
	"context"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// Cached answers from cache first and stores fresh matches.
// Cache failures are logged and never fail a lookup.
type Cached struct {
	next   Geocoder
	cache  Cache
	logger logx.Logger
}

// NewCached returns nil when next is nil and next itself when cache is nil.
func NewCached(next Geocoder, cache Cache, logger logx.Logger) Geocoder {
	if next == nil {
		return nil
	}
	if cache == nil {
		return next
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Cached{next: next, cache: cache, logger: logger}
}

// Geocode implements Geocoder.
func (c *Cached) Geocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	hit, err := c.cache.Get(ctx, address)
	if err != nil {
		c.logger.Warn("geocode cache read failed", logx.String("address", address), logx.Err(err))
	} else if hit != nil {
		return hit, nil
	}

	p, err := c.next.Geocode(ctx, address)
	if err != nil || p == nil {
		return p, err
	}
	if err := c.cache.Put(ctx, address, *p); err != nil {
		c.logger.Warn("geocode cache write failed", logx.String("address", address), logx.Err(err))
	}
	return p, nil
}
