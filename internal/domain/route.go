package domain

// RouteStop is a single stop of a planned route.
// Approximate marks coordinates produced by the geocoding fallback.
type RouteStop struct {
	OrderID     string
	Address     string
	Coordinates Coordinates
	Approximate bool
	HopKm       float64
}

// RoutePlan is the visiting order computed for a courier. It is transient and never persisted.
type RoutePlan struct {
	OrderedStops     []RouteStop
	TotalDistanceKm  float64
	EstimatedMinutes int
	Approximate      bool
}
