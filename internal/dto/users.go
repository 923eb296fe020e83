package dto

// UserResponse represents user data in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// UserListResponse envelope
type UserListResponse struct {
	Success bool           `json:"success"`
	Users   []UserResponse `json:"users"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role string `json:"role"` // USER | GUIDE | ADMIN
}

// GuideStatsResponse holds a guide's track record
type GuideStatsResponse struct {
	AverageRating       *float64 `json:"averageRating"`
	TotalReviews        int      `json:"totalReviews"`
	SuccessfulTours     int      `json:"successfulTours"`
	TotalCompletedTours int      `json:"totalCompletedTours"`
}

// GuideProfileResponse is the public guide profile
type GuideProfileResponse struct {
	Name  string             `json:"name"`
	Image string             `json:"image,omitempty"`
	Stats GuideStatsResponse `json:"stats"`
}

// AverageRatingResponse is a guide's mean rating, null without reviews
type AverageRatingResponse struct {
	AverageRating *float64 `json:"averageRating"`
	TotalReviews  int      `json:"totalReviews"`
}
