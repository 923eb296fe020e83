package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/services"
	"GOTOURS_BACK-END/internal/utils"
)

// ToursHandler manages tour-related endpoints
type ToursHandler struct {
	tours    *services.TourService
	bookings *services.BookingService
}

// NewToursHandler creates a new ToursHandler
func NewToursHandler(tours *services.TourService, bookings *services.BookingService) *ToursHandler {
	return &ToursHandler{tours: tours, bookings: bookings}
}

// ListTours handles GET /api/tours
// @Summary List tours
// @Description Newest first, each with its booked count and available spots
// @Tags tours
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Items to skip"
// @Param upcoming query bool false "Only tours dated from now on"
// @Param creator_id query string false "Only tours by this creator"
// @Success 200 {object} dto.TourListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tours [get]
func (h *ToursHandler) ListTours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var params services.ListToursParams

	var err error
	if v := q.Get("limit"); v != "" {
		if params.Limit, err = strconv.Atoi(v); err != nil || params.Limit < 0 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "limit must be a non-negative integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if params.Offset, err = strconv.Atoi(v); err != nil || params.Offset < 0 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "offset must be a non-negative integer")
			return
		}
	}
	if v := q.Get("upcoming"); v != "" {
		if params.Upcoming, err = strconv.ParseBool(v); err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "upcoming must be true or false")
			return
		}
	}
	if v := q.Get("creator_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "creator_id must be a valid UUID")
			return
		}
		params.CreatorID = &id
	}

	page, err := h.tours.ListTours(r.Context(), params)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.TourListResponse{
		Tours:  tourResponses(page.Items),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// MyTours handles GET /api/tours/mine
// @Summary List my tours
// @Tags tours
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TourResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/tours/mine [get]
func (h *ToursHandler) MyTours(w http.ResponseWriter, r *http.Request) {
	items, err := h.tours.ListMyTours(r.Context(), utils.ActorFromContext(r.Context()))
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, tourResponses(items))
}

// GetTour handles GET /api/tours/{id}
// @Summary Tour detail
// @Tags tours
// @Produce json
// @Param id path string true "Tour ID"
// @Success 200 {object} dto.TourResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tours/{id} [get]
func (h *ToursHandler) GetTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	tour, err := h.tours.GetTour(r.Context(), id)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, tourResponse(tour))
}

// CreateTour handles POST /api/tours
// @Summary Create a tour
// @Description Guides and admins only; the caller becomes the creator
// @Tags tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTourRequest true "Tour payload"
// @Success 201 {object} dto.TourResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/tours [post]
func (h *ToursHandler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTourRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return // Error already handled by DecodeJSONRequest
	}

	in := services.TourInput{
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Price:           req.Price,
		Duration:        req.Duration,
		MaxParticipants: req.MaxParticipants,
	}
	if req.Date != "" {
		date, err := utils.ParseDate(req.Date)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "date must be ISO 8601 (RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD)")
			return
		}
		in.Date = date
	}

	actor := utils.ActorFromContext(r.Context())
	tour, err := h.tours.CreateTour(r.Context(), actor, in)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}

	// Re-read so the response carries the creator name and availability
	summary, err := h.tours.GetTour(r.Context(), tour.ID)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, tourResponse(summary))
}

// UpdateTour handles PATCH/PUT /api/tours/{id}
// @Summary Update a tour
// @Description Creator or admin only; omitted fields stay unchanged
// @Tags tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Param payload body dto.UpdateTourRequest true "Fields to update"
// @Success 200 {object} dto.TourResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "max participants below current bookings"
// @Router /api/tours/{id} [patch]
func (h *ToursHandler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateTourRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	patch := services.TourPatch{
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Price:           req.Price,
		Duration:        req.Duration,
		MaxParticipants: req.MaxParticipants,
	}
	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "date must be ISO 8601 (RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD)")
			return
		}
		patch.Date = &date
	}

	if _, err := h.tours.UpdateTour(r.Context(), utils.ActorFromContext(r.Context()), id, patch); err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	summary, err := h.tours.GetTour(r.Context(), id)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, tourResponse(summary))
}

// DeleteTour handles DELETE /api/tours/{id}
// @Summary Delete a tour
// @Description Creator or admin only; removes the tour's bookings and reviews too
// @Tags tours
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tours/{id} [delete]
func (h *ToursHandler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.tours.DeleteTour(r.Context(), utils.ActorFromContext(r.Context()), id); err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Availability handles GET /api/tours/{id}/availability
// @Summary Tour availability
// @Tags bookings
// @Produce json
// @Param id path string true "Tour ID"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tours/{id}/availability [get]
func (h *ToursHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	avail, err := h.bookings.GetAvailability(r.Context(), id)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.AvailabilityResponse{
		TourID:          id.String(),
		MaxParticipants: avail.MaxParticipants,
		BookedCount:     avail.BookedCount,
		AvailableSpots:  avail.AvailableSpots,
	})
}
