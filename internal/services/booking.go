package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
)

// Booking outcomes reported to the BookingRecorder.
const (
	BookingResultCreated       = "created"
	BookingResultAlreadyBooked = "already_booked"
	BookingResultFullyBooked   = "fully_booked"
	BookingResultNotFound      = "not_found"
	BookingResultError         = "error"
	BookingResultCancelled     = "cancelled"
)

// BookingRepository is the persistence the booking service needs.
// CreateBooking must run the tour-exists, duplicate and capacity checks and
// the insert as one atomic step.
type BookingRepository interface {
	GetTourSummary(ctx context.Context, id uuid.UUID) (models.TourSummary, error)
	CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error)
	FindBooking(ctx context.Context, tourID, userID uuid.UUID) (models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]models.BookingDetail, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
}

// BookingService enforces tour capacity.
type BookingService struct {
	repo BookingRepository
	opts options
}

// NewBookingService creates a BookingService.
func NewBookingService(repo BookingRepository, opts ...Option) *BookingService {
	return &BookingService{repo: repo, opts: defaultOptions(opts)}
}

// GetAvailability returns the capacity view of a tour.
func (s *BookingService) GetAvailability(ctx context.Context, tourID uuid.UUID) (models.Availability, error) {
	sum, err := s.repo.GetTourSummary(ctx, tourID)
	if err != nil {
		return models.Availability{}, fromStore(err, "tour", "load tour")
	}
	return sum.Availability(), nil
}

// CreateBooking reserves one spot on the tour for the actor.
func (s *BookingService) CreateBooking(ctx context.Context, actor authz.Actor, tourID uuid.UUID) (models.Booking, error) {
	if !actor.IsAuthenticated() {
		return models.Booking{}, unauthorized("sign in to book a tour")
	}

	b, err := s.repo.CreateBooking(ctx, models.Booking{
		ID:        s.opts.newID(),
		TourID:    tourID,
		UserID:    actor.ID,
		CreatedAt: s.opts.utcNow(),
	})
	s.opts.recorder.RecordBooking(bookingResult(err))
	if err != nil {
		if !isRuleViolation(err) {
			logging.FromContext(ctx).Error().Err(err).
				Str("tour_id", tourID.String()).
				Str("user_id", actor.ID.String()).
				Msg("create booking failed")
		}
		return models.Booking{}, fromStore(err, "tour", "create booking")
	}

	logging.FromContext(ctx).Info().
		Str("booking_id", b.ID.String()).
		Str("tour_id", tourID.String()).
		Str("user_id", actor.ID.String()).
		Msg("booking created")
	return b, nil
}

// BookingRequest is the body-form of a booking. A booking always holds a
// single spot, so Participants must be 1.
type BookingRequest struct {
	TourID       uuid.UUID
	Participants int
}

// Book validates req and reserves one spot on req.TourID for the actor.
func (s *BookingService) Book(ctx context.Context, actor authz.Actor, req BookingRequest) (models.Booking, error) {
	if !actor.IsAuthenticated() {
		return models.Booking{}, unauthorized("sign in to book a tour")
	}
	v := validationErrors{}
	if req.TourID == uuid.Nil {
		v.add("tourId", "tourId is required")
	}
	if req.Participants != 1 {
		v.add("participants", "a booking reserves exactly one spot")
	}
	if err := v.err(); err != nil {
		return models.Booking{}, err
	}
	return s.CreateBooking(ctx, actor, req.TourID)
}

// CancelBooking deletes the actor's own booking, freeing its spot.
func (s *BookingService) CancelBooking(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) error {
	if !actor.IsAuthenticated() {
		return unauthorized("sign in to cancel a booking")
	}
	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return fromStore(err, "booking", "load booking")
	}
	if !authz.OwnsBooking(actor, b) {
		return forbidden("you can only cancel your own bookings")
	}
	if err := s.repo.DeleteBooking(ctx, bookingID); err != nil {
		return fromStore(err, "booking", "cancel booking")
	}

	s.opts.recorder.RecordBooking(BookingResultCancelled)
	logging.FromContext(ctx).Info().
		Str("booking_id", bookingID.String()).
		Str("tour_id", b.TourID.String()).
		Str("user_id", actor.ID.String()).
		Msg("booking cancelled")
	return nil
}

// GetBooking returns one of the actor's bookings with its tour.
func (s *BookingService) GetBooking(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (models.BookingDetail, error) {
	if !actor.IsAuthenticated() {
		return models.BookingDetail{}, unauthorized("sign in to view bookings")
	}
	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, fromStore(err, "booking", "load booking")
	}
	if !authz.OwnsBooking(actor, b) {
		return models.BookingDetail{}, forbidden("you can only view your own bookings")
	}
	tour, err := s.repo.GetTourSummary(ctx, b.TourID)
	if err != nil {
		return models.BookingDetail{}, fromStore(err, "tour", "load tour")
	}
	return models.BookingDetail{Booking: b, Tour: tour}, nil
}

// ListMyBookings returns the actor's bookings, newest first.
func (s *BookingService) ListMyBookings(ctx context.Context, actor authz.Actor) ([]models.BookingDetail, error) {
	if !actor.IsAuthenticated() {
		return nil, unauthorized("sign in to view bookings")
	}
	out, err := s.repo.ListBookingsByUser(ctx, actor.ID)
	if err != nil {
		return nil, fromStore(err, "booking", "list bookings")
	}
	return out, nil
}

// HasBooked reports whether the actor holds a booking for the tour.
func (s *BookingService) HasBooked(ctx context.Context, actor authz.Actor, tourID uuid.UUID) (bool, error) {
	if !actor.IsAuthenticated() {
		return false, unauthorized("sign in to check bookings")
	}
	_, err := s.repo.FindBooking(ctx, tourID, actor.ID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fromStore(err, "booking", "check booking")
	}
	return true, nil
}

func bookingResult(err error) string {
	switch {
	case err == nil:
		return BookingResultCreated
	case errors.Is(err, store.ErrAlreadyBooked):
		return BookingResultAlreadyBooked
	case errors.Is(err, store.ErrFullyBooked):
		return BookingResultFullyBooked
	case errors.Is(err, store.ErrNotFound):
		return BookingResultNotFound
	}
	return BookingResultError
}

func isRuleViolation(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrAlreadyBooked) ||
		errors.Is(err, store.ErrFullyBooked)
}
