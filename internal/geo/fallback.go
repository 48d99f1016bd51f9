package geo

import (
	"hash/fnv"
	"strings"

	"courier-dispatch/internal/domain"
)

// DefaultJitterDegrees bounds the fallback offset on each axis.
const DefaultJitterDegrees = 0.01

// Fallback produces placeholder coordinates for addresses the geocoder cannot resolve.
// The offset is derived from the address so the same address always lands on the same point.
type Fallback struct {
	Reference domain.Coordinates
	Jitter    float64
}

// NewFallback returns a Fallback around reference with the default jitter.
func NewFallback(reference domain.Coordinates) Fallback {
	return Fallback{Reference: reference, Jitter: DefaultJitterDegrees}
}

// Coordinates returns the jittered placeholder for address.
func (f Fallback) Coordinates(address string) domain.Coordinates {
	jitter := f.Jitter
	if jitter <= 0 {
		jitter = DefaultJitterDegrees
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(address))))
	sum := h.Sum64()

	// two independent 32-bit halves mapped to [-1, 1)
	u := float64(uint32(sum>>32))/float64(1<<31) - 1
	v := float64(uint32(sum))/float64(1<<31) - 1

	return domain.Coordinates{
		Lat: f.Reference.Lat + u*jitter,
		Lng: f.Reference.Lng + v*jitter,
	}
}
