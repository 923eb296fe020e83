package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/services"
	"GOTOURS_BACK-END/internal/utils"
)

// BookingsHandler manages booking endpoints
type BookingsHandler struct {
	bookings *services.BookingService
}

// NewBookingsHandler creates a new BookingsHandler
func NewBookingsHandler(bookings *services.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

// BookTour handles POST /api/tours/{id}/book
// @Summary Book a spot on a tour
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Success 201 {object} dto.CreateBookingResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "ALREADY_BOOKED or FULLY_BOOKED"
// @Router /api/tours/{id}/book [post]
func (h *BookingsHandler) BookTour(w http.ResponseWriter, r *http.Request) {
	tourID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.bookings.CreateBooking(r.Context(), utils.ActorFromContext(r.Context()), tourID)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, dto.CreateBookingResponse{
		BookingID: b.ID.String(),
		Message:   "Successfully booked the tour",
	})
}

// CreateBooking handles POST /api/bookings
// @Summary Book a spot on a tour by id
// @Description Same as POST /api/tours/{id}/book with the tour id in the body. participants must be 1 when present.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} dto.CreateBookingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "ALREADY_BOOKED or FULLY_BOOKED"
// @Router /api/bookings [post]
func (h *BookingsHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	in := services.BookingRequest{Participants: 1}
	if req.Participants != nil {
		in.Participants = *req.Participants
	}
	// A missing id stays uuid.Nil and is reported by the service
	if req.TourID != "" {
		id, err := uuid.Parse(req.TourID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "tourId must be a valid UUID")
			return
		}
		in.TourID = id
	}

	b, err := h.bookings.Book(r.Context(), utils.ActorFromContext(r.Context()), in)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, dto.CreateBookingResponse{
		BookingID: b.ID.String(),
		Message:   "Successfully booked the tour",
	})
}

// CheckBooking handles GET /api/tours/{id}/check-booking
// @Summary Whether the caller booked the tour
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Success 200 {object} dto.CheckBookingResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/tours/{id}/check-booking [get]
func (h *BookingsHandler) CheckBooking(w http.ResponseWriter, r *http.Request) {
	tourID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	booked, err := h.bookings.HasBooked(r.Context(), utils.ActorFromContext(r.Context()), tourID)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.CheckBookingResponse{HasBooked: booked})
}

// ListBookings handles GET /api/bookings
// @Summary List my bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.BookingListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/bookings [get]
func (h *BookingsHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	items, err := h.bookings.ListMyBookings(r.Context(), utils.ActorFromContext(r.Context()))
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	out := make([]dto.BookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, bookingResponse(b))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.BookingListResponse{Bookings: out})
}

// GetBooking handles GET /api/bookings/{id}
// @Summary Booking detail
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id} [get]
func (h *BookingsHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.bookings.GetBooking(r.Context(), utils.ActorFromContext(r.Context()), id)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, bookingResponse(b))
}

// CancelBooking handles DELETE /api/bookings/{id}
// @Summary Cancel my booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/bookings/{id} [delete]
func (h *BookingsHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.bookings.CancelBooking(r.Context(), utils.ActorFromContext(r.Context()), id); err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Booking cancelled successfully"})
}
