package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Review is a rating left by a participant for the guide of a past tour.
// UserID is the reviewed guide, ReviewerID the author.
type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TourID     uuid.UUID `json:"tour_id" db:"tour_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	ReviewerID uuid.UUID `json:"reviewer_id" db:"reviewer_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ReviewDetail adds display fields for guide review listings.
type ReviewDetail struct {
	Review
	TourTitle    string
	ReviewerName string
}

// GuideStats aggregates a guide's track record.
type GuideStats struct {
	RatingSum           int
	TotalReviews        int
	SuccessfulTours     int
	TotalCompletedTours int
}

// AverageRating returns the mean rating rounded to one decimal, or nil when
// the guide has no reviews.
func (s GuideStats) AverageRating() *float64 {
	if s.TotalReviews == 0 {
		return nil
	}
	avg := float64(s.RatingSum) / float64(s.TotalReviews)
	rounded := math.Round(avg*10) / 10
	return &rounded
}
