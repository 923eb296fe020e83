// Package memory is an in-process implementation of the persistence
// contract. Every method runs under one mutex, so the capacity check and
// insert in CreateBooking are atomic the same way the Postgres transaction is.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
)

// Store keeps users, tours, bookings and reviews in maps.
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	tours    map[uuid.UUID]models.Tour
	bookings map[uuid.UUID]models.Booking
	reviews  map[uuid.UUID]models.Review
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]models.User),
		tours:    make(map[uuid.UUID]models.Tour),
		bookings: make(map[uuid.UUID]models.Booking),
		reviews:  make(map[uuid.UUID]models.Review),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return store.ErrDuplicate
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	cur.Name = u.Name
	cur.Image = u.Image
	cur.Role = u.Role
	cur.UpdatedAt = u.UpdatedAt
	s.users[u.ID] = cur
	return cur, nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role, at time.Time) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = at
	s.users[id] = u
	return u, nil
}

// --- tours ---

func (s *Store) CreateTour(ctx context.Context, t models.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[t.CreatorID]; !ok {
		return store.ErrUserNotFound
	}
	if _, ok := s.tours[t.ID]; ok {
		return store.ErrDuplicate
	}
	s.tours[t.ID] = t
	return nil
}

func (s *Store) GetTour(ctx context.Context, id uuid.UUID) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[id]
	if !ok {
		return models.Tour{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) GetTourSummary(ctx context.Context, id uuid.UUID) (models.TourSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[id]
	if !ok {
		return models.TourSummary{}, store.ErrNotFound
	}
	return s.summaryLocked(t), nil
}

func (s *Store) ListTours(ctx context.Context, f models.TourFilter) ([]models.TourSummary, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Tour, 0, len(s.tours))
	for _, t := range s.tours {
		if f.CreatorID != nil && t.CreatorID != *f.CreatorID {
			continue
		}
		if f.UpcomingFrom != nil && t.Date.Before(*f.UpcomingFrom) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}

	out := make([]models.TourSummary, 0, end-start)
	for _, t := range matched[start:end] {
		out = append(out, s.summaryLocked(t))
	}
	return out, total, nil
}

func (s *Store) UpdateTour(ctx context.Context, t models.Tour) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tours[t.ID]
	if !ok {
		return models.Tour{}, store.ErrNotFound
	}
	if t.MaxParticipants < s.countLocked(t.ID) {
		return models.Tour{}, store.ErrCapacityBelowBookings
	}
	t.CreatorID = cur.CreatorID
	t.CreatedAt = cur.CreatedAt
	s.tours[t.ID] = t
	return t, nil
}

// DeleteTour removes the tour with its bookings and reviews.
func (s *Store) DeleteTour(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.tours, id)
	for bid, b := range s.bookings {
		if b.TourID == id {
			delete(s.bookings, bid)
		}
	}
	for rid, r := range s.reviews {
		if r.TourID == id {
			delete(s.reviews, rid)
		}
	}
	return nil
}

// --- bookings ---

// CreateBooking inserts the booking only if the tour exists, the user has no
// booking for it yet and a spot is left, in that order.
func (s *Store) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[b.TourID]
	if !ok {
		return models.Booking{}, store.ErrNotFound
	}
	count := 0
	for _, existing := range s.bookings {
		if existing.TourID != b.TourID {
			continue
		}
		if existing.UserID == b.UserID {
			return models.Booking{}, store.ErrAlreadyBooked
		}
		count++
	}
	if count >= t.MaxParticipants {
		return models.Booking{}, store.ErrFullyBooked
	}
	if _, ok := s.users[b.UserID]; !ok {
		return models.Booking{}, store.ErrUserNotFound
	}
	s.bookings[b.ID] = b
	return b, nil
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) FindBooking(ctx context.Context, tourID, userID uuid.UUID) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.TourID == tourID && b.UserID == userID {
			return b, nil
		}
	}
	return models.Booking{}, store.ErrNotFound
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]models.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BookingDetail, 0)
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		t, ok := s.tours[b.TourID]
		if !ok {
			continue
		}
		out = append(out, models.BookingDetail{Booking: b, Tour: s.summaryLocked(t)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

// --- reviews ---

func (s *Store) CreateReview(ctx context.Context, r models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[r.TourID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range s.reviews {
		if existing.TourID == r.TourID && existing.ReviewerID == r.ReviewerID {
			return store.ErrAlreadyReviewed
		}
	}
	for _, id := range []uuid.UUID{r.UserID, r.ReviewerID} {
		if _, ok := s.users[id]; !ok {
			return store.ErrUserNotFound
		}
	}
	s.reviews[r.ID] = r
	return nil
}

func (s *Store) FindReview(ctx context.Context, tourID, reviewerID uuid.UUID) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.TourID == tourID && r.ReviewerID == reviewerID {
			return r, nil
		}
	}
	return models.Review{}, store.ErrNotFound
}

func (s *Store) ListReviewsByGuide(ctx context.Context, guideID uuid.UUID) ([]models.ReviewDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ReviewDetail, 0)
	for _, r := range s.reviews {
		if r.UserID != guideID {
			continue
		}
		d := models.ReviewDetail{Review: r}
		if t, ok := s.tours[r.TourID]; ok {
			d.TourTitle = t.Title
		}
		if u, ok := s.users[r.ReviewerID]; ok {
			d.ReviewerName = u.Name
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GuideStats(ctx context.Context, guideID uuid.UUID, now time.Time) (models.GuideStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st models.GuideStats
	for _, r := range s.reviews {
		if r.UserID == guideID {
			st.RatingSum += r.Rating
			st.TotalReviews++
		}
	}
	for _, t := range s.tours {
		if t.CreatorID != guideID || !t.Date.Before(now) {
			continue
		}
		st.TotalCompletedTours++
		if s.countLocked(t.ID) > 1 {
			st.SuccessfulTours++
		}
	}
	return st, nil
}

func (s *Store) countLocked(tourID uuid.UUID) int {
	n := 0
	for _, b := range s.bookings {
		if b.TourID == tourID {
			n++
		}
	}
	return n
}

func (s *Store) summaryLocked(t models.Tour) models.TourSummary {
	sum := models.TourSummary{Tour: t, BookedCount: s.countLocked(t.ID)}
	if u, ok := s.users[t.CreatorID]; ok {
		sum.CreatorName = u.Name
	}
	return sum
}
