package route

import (
	"fmt"
	"math"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
)

// Default planning policy.
const (
	DefaultAverageSpeedKmh = 25.0
	DefaultDwellMinutes    = 7.0
)

// DistanceFunc measures the distance between two points in kilometers.
type DistanceFunc func(a, b domain.Coordinates) float64

// Config stores Optimizer settings.
type Config struct {
	AverageSpeedKmh float64 // travel speed used for the estimate
	DwellMinutes    float64 // fixed time spent at each stop
}

// Optimizer orders stops with a greedy nearest-neighbor heuristic.
// It keeps no state between calls and is safe for concurrent use.
type Optimizer struct {
	cfg      Config
	distance DistanceFunc
}

// NewOptimizer creates an Optimizer. A non-positive speed or a negative dwell falls back to the
// default; zero dwell is kept. A nil distance function falls back to geo.DistanceKm.
func NewOptimizer(cfg Config, distance DistanceFunc) *Optimizer {
	if cfg.AverageSpeedKmh <= 0 {
		cfg.AverageSpeedKmh = DefaultAverageSpeedKmh
	}
	if cfg.DwellMinutes < 0 {
		cfg.DwellMinutes = DefaultDwellMinutes
	}
	if distance == nil {
		distance = geo.DistanceKm
	}
	return &Optimizer{cfg: cfg, distance: distance}
}

// Optimize returns the visiting order starting at start.
//
// At every step the closest unvisited stop is taken; on equal distance the stop that comes first
// in the input wins, so the result is deterministic. O(n²) in the number of stops.
func (o *Optimizer) Optimize(start domain.Coordinates, stops []domain.RouteStop) (domain.RoutePlan, error) {
	if len(stops) == 0 {
		return domain.RoutePlan{}, apperr.ErrEmptyStopSet
	}

	remaining := make([]domain.RouteStop, len(stops))
	copy(remaining, stops)

	ordered := make([]domain.RouteStop, 0, len(stops))
	current := start
	total := 0.0
	approximate := false

	for len(remaining) > 0 {
		best := -1
		bestDist := math.Inf(1)
		for i, s := range remaining {
			d := o.distance(current, s.Coordinates)
			if math.IsNaN(d) {
				return domain.RoutePlan{}, fmt.Errorf("optimize: distance to stop %q is NaN: %w", s.OrderID, apperr.ErrInvalid)
			}
			// strict comparison keeps the earliest stop on ties
			if d < bestDist {
				best, bestDist = i, d
			}
		}

		next := remaining[best]
		next.HopKm = bestDist
		ordered = append(ordered, next)
		approximate = approximate || next.Approximate
		total += bestDist
		current = next.Coordinates

		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	totalKm := geo.Round1(total)
	return domain.RoutePlan{
		OrderedStops:     ordered,
		TotalDistanceKm:  totalKm,
		EstimatedMinutes: o.EstimateMinutes(totalKm, len(ordered)),
		Approximate:      approximate,
	}, nil
}

// EstimateMinutes returns round(distance / speed * 60 + stops * dwell).
func (o *Optimizer) EstimateMinutes(distanceKm float64, stops int) int {
	return int(math.Round(distanceKm/o.cfg.AverageSpeedKmh*60 + float64(stops)*o.cfg.DwellMinutes))
}
