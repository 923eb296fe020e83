package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one reserved participant slot on a tour
type Booking struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TourID    uuid.UUID `json:"tour_id" db:"tour_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BookingDetail is a booking with the tour it reserves.
type BookingDetail struct {
	Booking
	Tour TourSummary
}
