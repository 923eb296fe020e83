package dto

// CreateReviewRequest is a review submission. UserID is the guide being reviewed.
type CreateReviewRequest struct {
	TourID  string `json:"tourId"`
	UserID  string `json:"userId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewResponse represents a review in responses
type ReviewResponse struct {
	ID         string `json:"id"`
	TourID     string `json:"tourId"`
	UserID     string `json:"userId"`
	ReviewerID string `json:"reviewerId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	CreatedAt  string `json:"createdAt"`
}

// GuideReviewResponse adds display names for guide listings
type GuideReviewResponse struct {
	ReviewResponse
	TourTitle    string `json:"tourTitle"`
	ReviewerName string `json:"reviewerName"`
}

// CanReviewResponse tells whether the caller may review the tour
type CanReviewResponse struct {
	CanReview bool `json:"canReview"`
}
