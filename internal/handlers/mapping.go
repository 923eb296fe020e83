package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/utils"
)

// pathUUID reads a uuid path value, writing a 400 response when it is malformed
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid id", name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func tourResponse(t models.TourSummary) dto.TourResponse {
	avail := t.Availability()
	return dto.TourResponse{
		ID:              t.ID.String(),
		Title:           t.Title,
		Description:     t.Description,
		ImageURL:        t.ImageURL,
		Price:           t.Price,
		Duration:        t.Duration,
		Date:            utils.FormatTime(t.Date),
		MaxParticipants: t.MaxParticipants,
		BookedCount:     avail.BookedCount,
		AvailableSpots:  avail.AvailableSpots,
		Creator:         dto.CreatorResponse{ID: t.CreatorID.String(), Name: t.CreatorName},
		CreatedAt:       utils.FormatTime(t.CreatedAt),
		UpdatedAt:       utils.FormatTime(t.UpdatedAt),
	}
}

func tourResponses(items []models.TourSummary) []dto.TourResponse {
	out := make([]dto.TourResponse, 0, len(items))
	for _, t := range items {
		out = append(out, tourResponse(t))
	}
	return out
}

func bookingResponse(b models.BookingDetail) dto.BookingResponse {
	return dto.BookingResponse{
		ID:        b.ID.String(),
		TourID:    b.TourID.String(),
		UserID:    b.UserID.String(),
		CreatedAt: utils.FormatTime(b.CreatedAt),
		Tour:      tourResponse(b.Tour),
	}
}

func reviewResponse(r models.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:         r.ID.String(),
		TourID:     r.TourID.String(),
		UserID:     r.UserID.String(),
		ReviewerID: r.ReviewerID.String(),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  utils.FormatTime(r.CreatedAt),
	}
}

func userResponse(u models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Image:     u.Image,
		Role:      string(u.Role),
		CreatedAt: utils.FormatTime(u.CreatedAt),
		UpdatedAt: utils.FormatTime(u.UpdatedAt),
	}
}
