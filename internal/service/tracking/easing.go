package tracking

import (
	"math"

	"courier-dispatch/internal/domain"
)

// EaseInOutCubic maps linear progress t in [0, 1] onto the ease-in-out cubic curve.
func EaseInOutCubic(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 4 * t * t * t
	default:
		return 1 - math.Pow(-2*t+2, 3)/2
	}
}

func lerp(a, b domain.Coordinates, t float64) domain.Coordinates {
	return domain.Coordinates{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

// alongRoute spreads progress evenly across segments regardless of their length.
func alongRoute(route []domain.Coordinates, progress float64) domain.Coordinates {
	segments := len(route) - 1
	if progress >= 1 {
		return route[segments]
	}
	p := progress * float64(segments)
	idx := int(math.Floor(p))
	if idx >= segments {
		idx = segments - 1
	}
	if idx < 0 {
		idx = 0
	}
	return lerp(route[idx], route[idx+1], p-float64(idx))
}
