package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
)

// UnknownReviewer is shown when a review's author no longer exists.
const UnknownReviewer = "Unknown User"

// ReviewRepository is the persistence the review service needs.
type ReviewRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	GetTour(ctx context.Context, id uuid.UUID) (models.Tour, error)
	FindBooking(ctx context.Context, tourID, userID uuid.UUID) (models.Booking, error)
	FindReview(ctx context.Context, tourID, reviewerID uuid.UUID) (models.Review, error)
	CreateReview(ctx context.Context, r models.Review) error
	ListReviewsByGuide(ctx context.Context, guideID uuid.UUID) ([]models.ReviewDetail, error)
	GuideStats(ctx context.Context, guideID uuid.UUID, now time.Time) (models.GuideStats, error)
}

// ReviewInput is a review submission. GuideID must be the tour's creator.
type ReviewInput struct {
	TourID  uuid.UUID
	GuideID uuid.UUID
	Rating  int
	Comment string
}

// GuideProfile is the public track record of a guide.
type GuideProfile struct {
	Name                string
	Image               string
	AverageRating       *float64
	TotalReviews        int
	SuccessfulTours     int
	TotalCompletedTours int
}

// RatingSummary is a guide's average rating.
type RatingSummary struct {
	AverageRating *float64
	TotalReviews  int
}

// ReviewService decides review eligibility and records reviews.
type ReviewService struct {
	repo ReviewRepository
	opts options
}

// NewReviewService creates a ReviewService.
func NewReviewService(repo ReviewRepository, opts ...Option) *ReviewService {
	return &ReviewService{repo: repo, opts: defaultOptions(opts)}
}

// CanReview reports whether the actor booked the tour, the tour already
// took place and the actor has not reviewed it yet.
func (s *ReviewService) CanReview(ctx context.Context, actor authz.Actor, tourID uuid.UUID) (bool, error) {
	if !actor.IsAuthenticated() {
		return false, unauthorized("sign in to review a tour")
	}
	tour, err := s.repo.GetTour(ctx, tourID)
	if err != nil {
		return false, fromStore(err, "tour", "load tour")
	}
	err = s.checkEligible(ctx, actor, tour)
	switch KindOf(err) {
	case KindConflict, KindForbidden:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateReview records the actor's review of a past tour's guide.
func (s *ReviewService) CreateReview(ctx context.Context, actor authz.Actor, in ReviewInput) (models.Review, error) {
	if !actor.IsAuthenticated() {
		return models.Review{}, unauthorized("sign in to submit a review")
	}

	in.Comment = strings.TrimSpace(in.Comment)
	v := validationErrors{}
	if in.TourID == uuid.Nil {
		v.add("tourId", "tour id is required")
	}
	if in.GuideID == uuid.Nil {
		v.add("userId", "guide id is required")
	}
	if in.Comment == "" {
		v.add("comment", "comment is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		v.add("rating", "rating must be between 1 and 5")
	}
	if err := v.err(); err != nil {
		return models.Review{}, err
	}

	tour, err := s.repo.GetTour(ctx, in.TourID)
	if err != nil {
		return models.Review{}, fromStore(err, "tour", "load tour")
	}
	if tour.CreatorID != in.GuideID {
		e := invalid("userId", "guide id does not match the tour creator")
		e.Reason = ReasonGuideMismatch
		return models.Review{}, e
	}
	if err := s.checkEligible(ctx, actor, tour); err != nil {
		return models.Review{}, err
	}

	r := models.Review{
		ID:         s.opts.newID(),
		TourID:     tour.ID,
		UserID:     tour.CreatorID,
		ReviewerID: actor.ID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		CreatedAt:  s.opts.utcNow(),
	}
	if err := s.repo.CreateReview(ctx, r); err != nil {
		return models.Review{}, fromStore(err, "tour", "create review")
	}

	logging.FromContext(ctx).Info().
		Str("review_id", r.ID.String()).
		Str("tour_id", r.TourID.String()).
		Str("reviewer_id", actor.ID.String()).
		Int("rating", r.Rating).
		Msg("review created")
	return r, nil
}

// checkEligible applies the date, booking and duplicate rules in that order.
func (s *ReviewService) checkEligible(ctx context.Context, actor authz.Actor, tour models.Tour) error {
	if !tour.IsCompleted(s.opts.now()) {
		return conflict(ReasonTourNotYetCompleted, "you can only review tours that have already taken place")
	}

	_, err := s.repo.FindBooking(ctx, tour.ID, actor.ID)
	if errors.Is(err, store.ErrNotFound) {
		e := forbidden("you must have been registered for the tour to review it")
		e.Reason = ReasonNotBooked
		return e
	}
	if err != nil {
		return fromStore(err, "booking", "check booking")
	}

	_, err = s.repo.FindReview(ctx, tour.ID, actor.ID)
	if err == nil {
		return conflict(ReasonAlreadyReviewed, "you have already reviewed this tour")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fromStore(err, "review", "check review")
	}
	return nil
}

// ListGuideReviews returns the reviews left for a guide, newest first.
func (s *ReviewService) ListGuideReviews(ctx context.Context, guideID uuid.UUID) ([]models.ReviewDetail, error) {
	out, err := s.repo.ListReviewsByGuide(ctx, guideID)
	if err != nil {
		return nil, fromStore(err, "guide", "list reviews")
	}
	for i := range out {
		if out[i].ReviewerName == "" {
			out[i].ReviewerName = UnknownReviewer
		}
	}
	return out, nil
}

// GuideProfile returns the guide's name, image and review statistics.
func (s *ReviewService) GuideProfile(ctx context.Context, guideID uuid.UUID) (GuideProfile, error) {
	u, err := s.repo.GetUser(ctx, guideID)
	if err != nil {
		return GuideProfile{}, fromStore(err, "guide", "load guide")
	}
	st, err := s.repo.GuideStats(ctx, guideID, s.opts.utcNow())
	if err != nil {
		return GuideProfile{}, fromStore(err, "guide", "load guide stats")
	}
	return GuideProfile{
		Name:                u.Name,
		Image:               u.Image,
		AverageRating:       st.AverageRating(),
		TotalReviews:        st.TotalReviews,
		SuccessfulTours:     st.SuccessfulTours,
		TotalCompletedTours: st.TotalCompletedTours,
	}, nil
}

// AverageRating returns the guide's mean rating. A guide without reviews,
// including an unknown id, has a nil average.
func (s *ReviewService) AverageRating(ctx context.Context, guideID uuid.UUID) (RatingSummary, error) {
	st, err := s.repo.GuideStats(ctx, guideID, s.opts.utcNow())
	if err != nil {
		return RatingSummary{}, fromStore(err, "guide", "load guide stats")
	}
	return RatingSummary{AverageRating: st.AverageRating(), TotalReviews: st.TotalReviews}, nil
}
