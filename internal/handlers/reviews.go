package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/services"
	"GOTOURS_BACK-END/internal/utils"
)

// ReviewsHandler manages reviews and guide profiles
type ReviewsHandler struct {
	reviews *services.ReviewService
}

// NewReviewsHandler creates a new ReviewsHandler
func NewReviewsHandler(reviews *services.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews}
}

// CreateReview handles POST /api/reviews
// @Summary Review the guide of a past tour
// @Description Only participants of a tour that already took place, once per tour
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateReviewRequest true "Review payload"
// @Success 201 {object} dto.ReviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "NOT_BOOKED"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "ALREADY_REVIEWED or TOUR_NOT_YET_COMPLETED"
// @Router /api/reviews [post]
func (h *ReviewsHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReviewRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	in := services.ReviewInput{Rating: req.Rating, Comment: req.Comment}
	// Missing ids stay uuid.Nil and are reported by the service
	if req.TourID != "" {
		id, err := uuid.Parse(req.TourID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "tourId must be a valid UUID")
			return
		}
		in.TourID = id
	}
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "userId must be a valid UUID")
			return
		}
		in.GuideID = id
	}

	review, err := h.reviews.CreateReview(r.Context(), utils.ActorFromContext(r.Context()), in)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, reviewResponse(review))
}

// CanReview handles GET /api/tours/{id}/can-review
// @Summary Whether the caller may review the tour
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Success 200 {object} dto.CanReviewResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tours/{id}/can-review [get]
func (h *ReviewsHandler) CanReview(w http.ResponseWriter, r *http.Request) {
	tourID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	can, err := h.reviews.CanReview(r.Context(), utils.ActorFromContext(r.Context()), tourID)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.CanReviewResponse{CanReview: can})
}

// GuideReviews handles GET /api/guides/{id}/reviews
// @Summary Reviews left for a guide
// @Tags reviews
// @Produce json
// @Param id path string true "Guide ID"
// @Success 200 {array} dto.GuideReviewResponse
// @Router /api/guides/{id}/reviews [get]
func (h *ReviewsHandler) GuideReviews(w http.ResponseWriter, r *http.Request) {
	guideID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.reviews.ListGuideReviews(r.Context(), guideID)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	out := make([]dto.GuideReviewResponse, 0, len(items))
	for _, rv := range items {
		out = append(out, dto.GuideReviewResponse{
			ReviewResponse: reviewResponse(rv.Review),
			TourTitle:      rv.TourTitle,
			ReviewerName:   rv.ReviewerName,
		})
	}
	utils.WriteJSONResponse(w, http.StatusOK, out)
}

// GuideProfile handles GET /api/users/{id}/profile
// @Summary Public guide profile
// @Tags reviews
// @Produce json
// @Param id path string true "Guide ID"
// @Success 200 {object} dto.GuideProfileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/users/{id}/profile [get]
func (h *ReviewsHandler) GuideProfile(w http.ResponseWriter, r *http.Request) {
	guideID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.reviews.GuideProfile(r.Context(), guideID)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.GuideProfileResponse{
		Name:  p.Name,
		Image: p.Image,
		Stats: dto.GuideStatsResponse{
			AverageRating:       p.AverageRating,
			TotalReviews:        p.TotalReviews,
			SuccessfulTours:     p.SuccessfulTours,
			TotalCompletedTours: p.TotalCompletedTours,
		},
	})
}

// AverageRating handles GET /api/users/{id}/average-rating
// @Summary A guide's average rating
// @Tags reviews
// @Produce json
// @Param id path string true "Guide ID"
// @Success 200 {object} dto.AverageRatingResponse
// @Router /api/users/{id}/average-rating [get]
func (h *ReviewsHandler) AverageRating(w http.ResponseWriter, r *http.Request) {
	guideID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s, err := h.reviews.AverageRating(r.Context(), guideID)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.AverageRatingResponse{
		AverageRating: s.AverageRating,
		TotalReviews:  s.TotalReviews,
	})
}
