package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/models"
)

func newBookingService(f *fixture, opts ...Option) *BookingService {
	return NewBookingService(f.store, append([]Option{WithClock(fixedClock)}, opts...)...)
}

func TestBookingScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newBookingService(f)

	guide := f.user(t, models.RoleGuide)
	a := f.user(t, models.RoleUser)
	b := f.user(t, models.RoleUser)
	c := f.user(t, models.RoleUser)
	tour := f.tour(t, guide, 2, testNow.Add(72*time.Hour))

	avail, err := svc.GetAvailability(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Availability{MaxParticipants: 2, BookedCount: 0, AvailableSpots: 2}, avail)

	bookingA, err := svc.CreateBooking(ctx, a, tour.ID)
	require.NoError(t, err)
	avail, err = svc.GetAvailability(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, avail.AvailableSpots)

	_, err = svc.CreateBooking(ctx, b, tour.ID)
	require.NoError(t, err)
	avail, err = svc.GetAvailability(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, avail.AvailableSpots)

	_, err = svc.CreateBooking(ctx, c, tour.ID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, ReasonFullyBooked, ReasonOf(err))

	require.NoError(t, svc.CancelBooking(ctx, a, bookingA.ID))
	avail, err = svc.GetAvailability(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, avail.AvailableSpots)

	_, err = svc.CreateBooking(ctx, c, tour.ID)
	require.NoError(t, err)
	avail, err = svc.GetAvailability(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, avail.AvailableSpots)
	assert.Equal(t, 2, avail.BookedCount)
}

func TestCreateBookingChecksInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newBookingService(f)

	guide := f.user(t, models.RoleGuide)
	a := f.user(t, models.RoleUser)
	b := f.user(t, models.RoleUser)
	tour := f.tour(t, guide, 1, testNow.Add(time.Hour))

	_, err := svc.CreateBooking(ctx, a, uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.CreateBooking(ctx, a, tour.ID)
	require.NoError(t, err)

	// the tour is now full, but a repeat booking reports the duplicate first
	_, err = svc.CreateBooking(ctx, a, tour.ID)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, ReasonAlreadyBooked, ReasonOf(err))

	_, err = svc.CreateBooking(ctx, b, tour.ID)
	assert.Equal(t, ReasonFullyBooked, ReasonOf(err))

	_, err = svc.CreateBooking(ctx, authz.Anonymous, tour.ID)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestConcurrentBookingsOnLastSpot(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newBookingService(f)

	guide := f.user(t, models.RoleGuide)
	a := f.user(t, models.RoleUser)
	b := f.user(t, models.RoleUser)
	tour := f.tour(t, guide, 1, testNow.Add(time.Hour))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, actor := range []authz.Actor{a, b} {
		wg.Add(1)
		go func(i int, actor authz.Actor) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.CreateBooking(ctx, actor, tour.ID)
		}(i, actor)
	}
	close(start)
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if ReasonOf(err) == ReasonFullyBooked {
			full++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, full)
}

func TestCapacityHoldsUnderLoad(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	rec := &countingRecorder{}
	svc := newBookingService(f, WithBookingRecorder(rec))

	guide := f.user(t, models.RoleGuide)
	tour := f.tour(t, guide, 5, testNow.Add(time.Hour))

	actors := make([]authz.Actor, 40)
	for i := range actors {
		actors[i] = f.user(t, models.RoleUser)
	}

	var wg sync.WaitGroup
	for _, actor := range actors {
		wg.Add(1)
		go func(actor authz.Actor) {
			defer wg.Done()
			// every user tries twice
			_, _ = svc.CreateBooking(ctx, actor, tour.ID)
			_, _ = svc.CreateBooking(ctx, actor, tour.ID)
		}(actor)
	}
	wg.Wait()

	avail, err := svc.GetAvailability(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, avail.BookedCount)
	assert.Equal(t, 0, avail.AvailableSpots)
	assert.Equal(t, 5, rec.get(BookingResultCreated))
	assert.Equal(t, 80, rec.get(BookingResultCreated)+rec.get(BookingResultAlreadyBooked)+rec.get(BookingResultFullyBooked))
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	rec := &countingRecorder{}
	svc := newBookingService(f, WithBookingRecorder(rec))

	guide := f.user(t, models.RoleGuide)
	owner := f.user(t, models.RoleUser)
	admin := f.user(t, models.RoleAdmin)
	tour := f.tour(t, guide, 3, testNow.Add(time.Hour))
	booking := f.book(t, owner, tour.ID)

	err := svc.CancelBooking(ctx, authz.Anonymous, booking.ID)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	err = svc.CancelBooking(ctx, owner, uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))

	// ownership is strict: not even an admin or the guide cancels someone else's booking
	for _, other := range []authz.Actor{admin, guide} {
		err = svc.CancelBooking(ctx, other, booking.ID)
		assert.Equal(t, KindForbidden, KindOf(err))
	}

	require.NoError(t, svc.CancelBooking(ctx, owner, booking.ID))
	assert.Equal(t, 1, rec.get(BookingResultCancelled))

	err = svc.CancelBooking(ctx, owner, booking.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestBookingViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newBookingService(f)

	guide := f.user(t, models.RoleGuide)
	a := f.user(t, models.RoleUser)
	b := f.user(t, models.RoleUser)
	first := f.tour(t, guide, 4, testNow.Add(time.Hour))
	second := f.tour(t, guide, 4, testNow.Add(2*time.Hour))
	older := f.book(t, a, first.ID)
	newer := f.book(t, a, second.ID)
	f.book(t, b, second.ID)

	booked, err := svc.HasBooked(ctx, a, first.ID)
	require.NoError(t, err)
	assert.True(t, booked)
	booked, err = svc.HasBooked(ctx, b, first.ID)
	require.NoError(t, err)
	assert.False(t, booked)

	mine, err := svc.ListMyBookings(ctx, a)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)
	assert.Equal(t, 2, mine[0].Tour.BookedCount)
	assert.Equal(t, "User 1", mine[0].Tour.CreatorName)

	detail, err := svc.GetBooking(ctx, a, older.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, detail.Tour.ID)
	assert.Equal(t, 3, detail.Tour.Availability().AvailableSpots)

	_, err = svc.GetBooking(ctx, b, older.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.ListMyBookings(ctx, authz.Anonymous)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestGetAvailabilityUnknownTour(t *testing.T) {
	svc := newBookingService(newFixture())
	_, err := svc.GetAvailability(context.Background(), uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newBookingService(f)

	guide := f.user(t, models.RoleGuide)
	walker := f.user(t, models.RoleUser)
	tour := f.tour(t, guide, 3, testNow.Add(time.Hour))

	tests := []struct {
		name  string
		actor authz.Actor
		req   BookingRequest
		kind  Kind
		field string
	}{
		{"anonymous", authz.Anonymous, BookingRequest{TourID: tour.ID, Participants: 1}, KindUnauthorized, ""},
		{"missing tour", walker, BookingRequest{Participants: 1}, KindValidation, "tourId"},
		{"no participants", walker, BookingRequest{TourID: tour.ID}, KindValidation, "participants"},
		{"a group", walker, BookingRequest{TourID: tour.ID, Participants: 3}, KindValidation, "participants"},
		{"unknown tour", walker, BookingRequest{TourID: uuid.New(), Participants: 1}, KindNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(ctx, tt.actor, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			if tt.field != "" {
				var se *Error
				require.ErrorAs(t, err, &se)
				assert.Contains(t, se.Fields, tt.field)
			}
		})
	}

	b, err := svc.Book(ctx, walker, BookingRequest{TourID: tour.ID, Participants: 1})
	require.NoError(t, err)
	assert.Equal(t, walker.ID, b.UserID)
	avail, err := svc.GetAvailability(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, avail.AvailableSpots)
}

func TestCreateBookingForMissingUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newBookingService(f)

	guide := f.user(t, models.RoleGuide)
	tour := f.tour(t, guide, 3, testNow.Add(time.Hour))
	ghost := authz.Actor{ID: uuid.New(), Role: models.RoleUser}

	_, err := svc.CreateBooking(ctx, ghost, tour.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "user not found", se.Message)

	avail, err := svc.GetAvailability(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, avail.BookedCount)
}
