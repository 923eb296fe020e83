package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store/memory"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fixture struct {
	store *memory.Store
	seq   int
}

func newFixture() *fixture {
	return &fixture{store: memory.New()}
}

func (f *fixture) user(t *testing.T, role models.Role) authz.Actor {
	t.Helper()
	f.seq++
	u := models.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("user%d@example.com", f.seq),
		Name:      fmt.Sprintf("User %d", f.seq),
		Role:      role,
		CreatedAt: testNow.Add(time.Duration(f.seq) * time.Second),
		UpdatedAt: testNow,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return authz.Actor{ID: u.ID, Email: u.Email, Role: u.Role}
}

func (f *fixture) tour(t *testing.T, creator authz.Actor, maxParticipants int, date time.Time) models.Tour {
	t.Helper()
	f.seq++
	tour := models.Tour{
		ID:              uuid.New(),
		Title:           fmt.Sprintf("Tour %d", f.seq),
		Description:     "<p>A walk</p>",
		ImageURL:        "https://example.com/tour.jpg",
		Price:           25,
		Duration:        2,
		Date:            date,
		MaxParticipants: maxParticipants,
		CreatorID:       creator.ID,
		CreatedAt:       testNow.Add(time.Duration(f.seq) * time.Second),
		UpdatedAt:       testNow,
	}
	require.NoError(t, f.store.CreateTour(context.Background(), tour))
	return tour
}

func (f *fixture) book(t *testing.T, actor authz.Actor, tourID uuid.UUID) models.Booking {
	t.Helper()
	f.seq++
	b, err := f.store.CreateBooking(context.Background(), models.Booking{
		ID:        uuid.New(),
		TourID:    tourID,
		UserID:    actor.ID,
		CreatedAt: testNow.Add(time.Duration(f.seq) * time.Second),
	})
	require.NoError(t, err)
	return b
}

// countingRecorder tallies booking outcomes.
type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordBooking(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[result]++
}

func (r *countingRecorder) get(result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[result]
}
