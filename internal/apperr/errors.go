package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when a lifecycle event is not allowed from the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrCodeMismatch is returned when a pickup or delivery code does not match.
var ErrCodeMismatch = errors.New("code mismatch")

// ErrCourierNotAvailable is returned when a courier that is not available tries to accept an offer.
var ErrCourierNotAvailable = errors.New("courier not available")

// ErrGeocodeUnavailable is returned when the geocoder has no result for an address.
var ErrGeocodeUnavailable = errors.New("geocode unavailable")

// ErrStaleFix is returned when a position fix is older than the last applied one.
var ErrStaleFix = errors.New("stale fix discarded")

// ErrQueueCorrupt is returned when persisted queue data cannot be decoded.
var ErrQueueCorrupt = errors.New("queue persistence corrupt")

// ErrEmptyStopSet is returned when a route is requested without stops.
var ErrEmptyStopSet = errors.New("empty stop set")

// TransitionError describes a rejected lifecycle event.
type TransitionError struct {
	From  string
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s from %s", e.Event, e.From)
}

// Is makes errors.Is(err, ErrInvalidTransition) hold.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
