package dto

// CreateBookingRequest books a tour by id. Participants defaults to 1 and
// any other value is rejected.
type CreateBookingRequest struct {
	TourID       string `json:"tourId"`
	Participants *int   `json:"participants,omitempty"`
}

// CreateBookingResponse carries the new booking id
type CreateBookingResponse struct {
	BookingID string `json:"bookingId"`
	Message   string `json:"message"`
}

// BookingResponse is a booking with the tour it reserves
type BookingResponse struct {
	ID        string       `json:"id"`
	TourID    string       `json:"tourId"`
	UserID    string       `json:"userId"`
	CreatedAt string       `json:"createdAt"`
	Tour      TourResponse `json:"tour"`
}

// BookingListResponse envelope
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CheckBookingResponse tells whether the caller booked the tour
type CheckBookingResponse struct {
	HasBooked bool `json:"hasBooked"`
}
