package dto

// CreateTourRequest represents the payload to create a tour
type CreateTourRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"` // HTML
	ImageURL        string  `json:"imageUrl"`
	Price           float64 `json:"price"`
	Duration        float64 `json:"duration"` // hours
	Date            string  `json:"date"`     // RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD
	MaxParticipants int     `json:"maxParticipants"`
}

// UpdateTourRequest represents fields allowed to update a tour
// All fields are optional; only provided ones will be updated
type UpdateTourRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	ImageURL        *string  `json:"imageUrl"`
	Price           *float64 `json:"price"`
	Duration        *float64 `json:"duration"`
	Date            *string  `json:"date"`
	MaxParticipants *int     `json:"maxParticipants"`
}

// CreatorResponse is the public summary of a tour's creator
type CreatorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TourResponse represents a tour object in responses
type TourResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"imageUrl"`
	Price           float64         `json:"price"`
	Duration        float64         `json:"duration"`
	Date            string          `json:"date"`
	MaxParticipants int             `json:"maxParticipants"`
	BookedCount     int             `json:"bookedCount"`
	AvailableSpots  int             `json:"availableSpots"`
	Creator         CreatorResponse `json:"creator"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

// TourListResponse is one page of tours
type TourListResponse struct {
	Tours  []TourResponse `json:"tours"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// AvailabilityResponse is the capacity view of a tour
type AvailabilityResponse struct {
	TourID          string `json:"tourId"`
	MaxParticipants int    `json:"maxParticipants"`
	BookedCount     int    `json:"bookedCount"`
	AvailableSpots  int    `json:"availableSpots"`
}

// UploadResponse carries the public URL of an uploaded image
type UploadResponse struct {
	URL string `json:"url"`
}
