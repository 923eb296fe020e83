// Package store defines the errors shared by the persistence
// implementations in store/postgres and store/memory.
package store

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUserNotFound is returned when a write references a user that does
	// not exist.
	ErrUserNotFound = errors.New("store: referenced user not found")
	// ErrDuplicate is returned when a unique key (for example a user email) is taken.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrAlreadyBooked is returned when the user already holds a booking for the tour.
	ErrAlreadyBooked = errors.New("store: already booked")
	// ErrFullyBooked is returned when the tour has no spot left.
	ErrFullyBooked = errors.New("store: fully booked")
	// ErrAlreadyReviewed is returned when the reviewer already reviewed the tour.
	ErrAlreadyReviewed = errors.New("store: already reviewed")
	// ErrCapacityBelowBookings is returned when a tour update would drop
	// max participants under the number of bookings it already holds.
	ErrCapacityBelowBookings = errors.New("store: capacity below bookings")
)
