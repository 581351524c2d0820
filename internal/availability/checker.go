// Package availability decides whether a bike is free for a time window given a
// snapshot of its reservations.
//
// The answer is advisory: it describes the snapshot it was given and holds no lock.
// Preventing two concurrent bookings of the same window is the job of the
// reservation store's write path.
package availability

import (
	"time"

	"bike-rental-backend/internal/window"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Reservation is a read-only snapshot of a reservation taken at a known instant.
type Reservation struct {
	ID             int64      `json:"id"`
	BikeID         int64      `json:"bike_id"`
	Status         Status     `json:"status"`
	EffectiveStart time.Time  `json:"effective_start"`
	EffectiveEnd   *time.Time `json:"effective_end,omitempty"` // nil while the end is unknown
}

// Blocks reports whether r occupies any part of w.
//
// An ongoing reservation without an end occupies the bike indefinitely. Any other
// reservation without an end blocks every window that ends after it starts.
func (r Reservation) Blocks(w window.Window) bool {
	if r.EffectiveEnd == nil {
		// Both the unbounded ongoing case and the missing-end fallback reduce to
		// a start-only comparison.
		return r.EffectiveStart.Before(w.End)
	}
	return r.EffectiveStart.Before(w.End) && r.EffectiveEnd.After(w.Start)
}

// IsAvailable reports whether none of the reservations for bikeID overlap w.
// Reservations for other bikes are ignored.
func IsAvailable(bikeID int64, w window.Window, reservations []Reservation) (bool, error) {
	if err := w.Validate(); err != nil {
		return false, err
	}
	for _, r := range reservations {
		if r.BikeID == bikeID && r.Blocks(w) {
			return false, nil
		}
	}
	return true, nil
}

// Conflicts returns the reservations for bikeID that overlap w, in input order.
func Conflicts(bikeID int64, w window.Window, reservations []Reservation) ([]Reservation, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	var out []Reservation
	for _, r := range reservations {
		if r.BikeID == bikeID && r.Blocks(w) {
			out = append(out, r)
		}
	}
	return out, nil
}
