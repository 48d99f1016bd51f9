package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/domain"
)

// GeocodeCache stores geocoder answers keyed by normalised address.
type GeocodeCache struct {
	db *pgxpool.Pool
}

// NewGeocodeCache creates a new GeocodeCache.
func NewGeocodeCache(db *pgxpool.Pool) *GeocodeCache {
	return &GeocodeCache{db: db}
}

// Get returns cached coordinates, or nil on a miss.
func (c *GeocodeCache) Get(ctx context.Context, address string) (*domain.Coordinates, error) {
	var p domain.Coordinates
	err := c.db.QueryRow(ctx,
		`SELECT lat, lng FROM geocode_cache WHERE address = $1`, normalizeAddress(address),
	).Scan(&p.Lat, &p.Lng)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("geocode cache get: %w", err)
	}
	return &p, nil
}

// Put stores coordinates for address.
func (c *GeocodeCache) Put(ctx context.Context, address string, p domain.Coordinates) error {
	_, err := c.db.Exec(ctx, `
        INSERT INTO geocode_cache (address, lat, lng)
        VALUES ($1, $2, $3)
        ON CONFLICT (address) DO UPDATE
        SET lat = EXCLUDED.lat, lng = EXCLUDED.lng, updated_at = now()
    `, normalizeAddress(address), p.Lat, p.Lng)
	if err != nil {
		return fmt.Errorf("geocode cache put: %w", err)
	}
	return nil
}

func normalizeAddress(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
