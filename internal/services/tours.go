package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/models"
)

// Listing limits.
const (
	DefaultTourLimit = 20
	MaxTourLimit     = 100
)

// Tour field limits. Prices are stored as NUMERIC(10,2) and capacity as a
// 32-bit INTEGER.
const (
	MaxTourPrice        = 99999999.99
	MaxTourParticipants = math.MaxInt32
)

// TourRepository is the persistence the tour service needs. UpdateTour must
// reject a capacity below the current booking count in the same transaction
// as the write; DeleteTour must remove the tour's bookings and reviews.
type TourRepository interface {
	CreateTour(ctx context.Context, t models.Tour) error
	GetTour(ctx context.Context, id uuid.UUID) (models.Tour, error)
	GetTourSummary(ctx context.Context, id uuid.UUID) (models.TourSummary, error)
	ListTours(ctx context.Context, f models.TourFilter) ([]models.TourSummary, int, error)
	UpdateTour(ctx context.Context, t models.Tour) (models.Tour, error)
	DeleteTour(ctx context.Context, id uuid.UUID) error
}

// TourInput is the full set of editable tour fields.
type TourInput struct {
	Title           string
	Description     string
	ImageURL        string
	Price           float64
	Duration        float64
	Date            time.Time
	MaxParticipants int
}

// TourPatch carries the fields of a partial update; nil means unchanged.
type TourPatch struct {
	Title           *string
	Description     *string
	ImageURL        *string
	Price           *float64
	Duration        *float64
	Date            *time.Time
	MaxParticipants *int
}

// ListToursParams filters and pages a tour listing.
type ListToursParams struct {
	Limit     int
	Offset    int
	Upcoming  bool
	CreatorID *uuid.UUID
}

// TourPage is one page of a tour listing.
type TourPage struct {
	Items  []models.TourSummary
	Total  int
	Limit  int
	Offset int
}

// TourService manages tour listings.
type TourService struct {
	repo TourRepository
	opts options
}

// NewTourService creates a TourService.
func NewTourService(repo TourRepository, opts ...Option) *TourService {
	return &TourService{repo: repo, opts: defaultOptions(opts)}
}

// ListTours returns a page of tours, newest first, each with its booking count.
func (s *TourService) ListTours(ctx context.Context, p ListToursParams) (TourPage, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultTourLimit
	}
	if limit > MaxTourLimit {
		limit = MaxTourLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	f := models.TourFilter{CreatorID: p.CreatorID, Limit: limit, Offset: offset}
	if p.Upcoming {
		now := s.opts.utcNow()
		f.UpcomingFrom = &now
	}
	items, total, err := s.repo.ListTours(ctx, f)
	if err != nil {
		return TourPage{}, fromStore(err, "tour", "list tours")
	}
	return TourPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// GetTour returns a tour with its creator name and booking count.
func (s *TourService) GetTour(ctx context.Context, id uuid.UUID) (models.TourSummary, error) {
	sum, err := s.repo.GetTourSummary(ctx, id)
	if err != nil {
		return models.TourSummary{}, fromStore(err, "tour", "load tour")
	}
	return sum, nil
}

// ListMyTours returns every tour the actor created.
func (s *TourService) ListMyTours(ctx context.Context, actor authz.Actor) ([]models.TourSummary, error) {
	if !actor.IsAuthenticated() {
		return nil, unauthorized("sign in to view your tours")
	}
	if !authz.CanListOwnTours(actor) {
		return nil, forbidden("only guides and admins have tours")
	}
	id := actor.ID
	items, _, err := s.repo.ListTours(ctx, models.TourFilter{CreatorID: &id})
	if err != nil {
		return nil, fromStore(err, "tour", "list tours")
	}
	return items, nil
}

// CreateTour publishes a new tour owned by the actor.
func (s *TourService) CreateTour(ctx context.Context, actor authz.Actor, in TourInput) (models.Tour, error) {
	if !actor.IsAuthenticated() {
		return models.Tour{}, unauthorized("sign in to create a tour")
	}
	if !authz.CanCreateTour(actor) {
		return models.Tour{}, forbidden("only guides and admins can create tours")
	}
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Tour{}, err
	}

	now := s.opts.utcNow()
	t := models.Tour{
		ID:              s.opts.newID(),
		Title:           in.Title,
		Description:     in.Description,
		ImageURL:        in.ImageURL,
		Price:           in.Price,
		Duration:        in.Duration,
		Date:            in.Date.UTC(),
		MaxParticipants: in.MaxParticipants,
		CreatorID:       actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateTour(ctx, t); err != nil {
		return models.Tour{}, fromStore(err, "creator", "create tour")
	}

	logging.FromContext(ctx).Info().
		Str("tour_id", t.ID.String()).
		Str("creator_id", actor.ID.String()).
		Msg("tour created")
	return t, nil
}

// UpdateTour applies a partial update. Only the creator or an admin may do so.
func (s *TourService) UpdateTour(ctx context.Context, actor authz.Actor, id uuid.UUID, patch TourPatch) (models.Tour, error) {
	if !actor.IsAuthenticated() {
		return models.Tour{}, unauthorized("sign in to update a tour")
	}
	cur, err := s.repo.GetTour(ctx, id)
	if err != nil {
		return models.Tour{}, fromStore(err, "tour", "load tour")
	}
	if !authz.CanManageTour(actor, cur) {
		return models.Tour{}, forbidden("only the tour creator or an admin can update this tour")
	}

	in := patch.apply(TourInput{
		Title:           cur.Title,
		Description:     cur.Description,
		ImageURL:        cur.ImageURL,
		Price:           cur.Price,
		Duration:        cur.Duration,
		Date:            cur.Date,
		MaxParticipants: cur.MaxParticipants,
	}).normalized()
	if err := in.validate(); err != nil {
		return models.Tour{}, err
	}

	updated, err := s.repo.UpdateTour(ctx, models.Tour{
		ID:              cur.ID,
		Title:           in.Title,
		Description:     in.Description,
		ImageURL:        in.ImageURL,
		Price:           in.Price,
		Duration:        in.Duration,
		Date:            in.Date.UTC(),
		MaxParticipants: in.MaxParticipants,
		CreatorID:       cur.CreatorID,
		CreatedAt:       cur.CreatedAt,
		UpdatedAt:       s.opts.utcNow(),
	})
	if err != nil {
		return models.Tour{}, fromStore(err, "tour", "update tour")
	}

	logging.FromContext(ctx).Info().
		Str("tour_id", id.String()).
		Str("actor_id", actor.ID.String()).
		Msg("tour updated")
	return updated, nil
}

// DeleteTour removes a tour with all of its bookings and reviews.
func (s *TourService) DeleteTour(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if !actor.IsAuthenticated() {
		return unauthorized("sign in to delete a tour")
	}
	cur, err := s.repo.GetTour(ctx, id)
	if err != nil {
		return fromStore(err, "tour", "load tour")
	}
	if !authz.CanManageTour(actor, cur) {
		return forbidden("only the tour creator or an admin can delete this tour")
	}
	if err := s.repo.DeleteTour(ctx, id); err != nil {
		return fromStore(err, "tour", "delete tour")
	}

	logging.FromContext(ctx).Info().
		Str("tour_id", id.String()).
		Str("actor_id", actor.ID.String()).
		Msg("tour deleted")
	return nil
}

func (in TourInput) normalized() TourInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

func (in TourInput) validate() error {
	v := validationErrors{}
	if in.Title == "" {
		v.add("title", "title is required")
	}
	if in.Description == "" {
		v.add("description", "description is required")
	}
	if in.ImageURL == "" {
		v.add("imageUrl", "image is required")
	}
	// written as negations so NaN fails too
	switch {
	case !(in.Price >= 0):
		v.add("price", "price must be zero or more")
	case !(in.Price <= MaxTourPrice):
		v.add("price", "price must not exceed 99999999.99")
	case !hasAtMostTwoDecimals(in.Price):
		v.add("price", "price must have at most two decimal places")
	}
	if !(in.Duration > 0) {
		v.add("duration", "duration must be greater than zero")
	}
	if in.Date.IsZero() {
		v.add("date", "date is required")
	}
	if in.MaxParticipants < 1 {
		v.add("maxParticipants", "max participants must be at least 1")
	} else if in.MaxParticipants > MaxTourParticipants {
		v.add("maxParticipants", fmt.Sprintf("max participants must not exceed %d", MaxTourParticipants))
	}
	return v.err()
}

// hasAtMostTwoDecimals allows for the float error of values like 19.99.
func hasAtMostTwoDecimals(price float64) bool {
	cents := price * 100
	return math.Abs(cents-math.Round(cents)) < 1e-3
}

func (p TourPatch) apply(in TourInput) TourInput {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.ImageURL != nil {
		in.ImageURL = *p.ImageURL
	}
	if p.Price != nil {
		in.Price = *p.Price
	}
	if p.Duration != nil {
		in.Duration = *p.Duration
	}
	if p.Date != nil {
		in.Date = *p.Date
	}
	if p.MaxParticipants != nil {
		in.MaxParticipants = *p.MaxParticipants
	}
	return in
}
