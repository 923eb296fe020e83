package models

import (
	"time"

	"github.com/google/uuid"
)

// Tour represents a bookable guided tour created by a guide or an admin
type Tour struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	ImageURL        string    `json:"image_url" db:"image_url"`
	Price           float64   `json:"price" db:"price"`
	Duration        float64   `json:"duration" db:"duration"` // hours
	Date            time.Time `json:"date" db:"date"`
	MaxParticipants int       `json:"max_participants" db:"max_participants"`
	CreatorID       uuid.UUID `json:"creator_id" db:"creator_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Availability is the capacity view of a tour.
type Availability struct {
	MaxParticipants int `json:"max_participants"`
	BookedCount     int `json:"booked_count"`
	AvailableSpots  int `json:"available_spots"`
}

// NewAvailability derives the remaining spots, never going below zero.
func NewAvailability(maxParticipants, bookedCount int) Availability {
	spots := maxParticipants - bookedCount
	if spots < 0 {
		spots = 0
	}
	return Availability{
		MaxParticipants: maxParticipants,
		BookedCount:     bookedCount,
		AvailableSpots:  spots,
	}
}

// TourSummary is a tour together with its current booking count, as loaded
// by list queries.
type TourSummary struct {
	Tour
	BookedCount int
	CreatorName string
}

// Availability returns the capacity view of the summary.
func (s TourSummary) Availability() Availability {
	return NewAvailability(s.MaxParticipants, s.BookedCount)
}

// IsCompleted reports whether the tour date is strictly before now.
func (t Tour) IsCompleted(now time.Time) bool {
	return t.Date.Before(now.UTC())
}

// TourFilter narrows tour listings.
type TourFilter struct {
	CreatorID    *uuid.UUID
	UpcomingFrom *time.Time
	Limit        int
	Offset       int
}
