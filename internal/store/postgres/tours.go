package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
)

const tourColumns = `t.id, t.title, t.description, t.image_url, t.price::float8, t.duration, t.date,
                t.max_participants, t.creator_id, t.created_at, t.updated_at`

// booked count comes from a correlated COUNT so one round trip gives the
// capacity view for every row
const tourSummarySelect = `SELECT ` + tourColumns + `,
                COALESCE((SELECT COUNT(1) FROM bookings b WHERE b.tour_id = t.id), 0) AS booked_count,
                COALESCE(u.name, '') AS creator_name
           FROM tours t
           LEFT JOIN users u ON u.id = t.creator_id`

func scanTour(row rowScanner) (models.Tour, error) {
	var t models.Tour
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.ImageURL, &t.Price, &t.Duration, &t.Date,
		&t.MaxParticipants, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanTourSummary(row rowScanner) (models.TourSummary, error) {
	var s models.TourSummary
	t := &s.Tour
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.ImageURL, &t.Price, &t.Duration, &t.Date,
		&t.MaxParticipants, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt, &s.BookedCount, &s.CreatorName)
	return s, err
}

func (s *Store) CreateTour(ctx context.Context, t models.Tour) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tours (id, title, description, image_url, price, duration, date, max_participants, creator_id, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Title, t.Description, t.ImageURL, t.Price, t.Duration, t.Date, t.MaxParticipants, t.CreatorID, t.CreatedAt, t.UpdatedAt,
	)
	return mapErr(err, nil)
}

func (s *Store) GetTour(ctx context.Context, id uuid.UUID) (models.Tour, error) {
	t, err := scanTour(s.pool.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours t WHERE t.id = $1`, id))
	return t, mapErr(err, nil)
}

func (s *Store) GetTourSummary(ctx context.Context, id uuid.UUID) (models.TourSummary, error) {
	sum, err := scanTourSummary(s.pool.QueryRow(ctx, tourSummarySelect+` WHERE t.id = $1`, id))
	return sum, mapErr(err, nil)
}

func (s *Store) ListTours(ctx context.Context, f models.TourFilter) ([]models.TourSummary, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if f.CreatorID != nil {
		args = append(args, *f.CreatorID)
		where = append(where, fmt.Sprintf("t.creator_id = $%d", len(args)))
	}
	if f.UpcomingFrom != nil {
		args = append(args, *f.UpcomingFrom)
		where = append(where, fmt.Sprintf("t.date >= $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(1) FROM tours t`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := tourSummarySelect + clause + ` ORDER BY t.created_at DESC, t.id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]models.TourSummary, 0)
	for rows.Next() {
		sum, err := scanTourSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateTour locks the tour row so a concurrent booking cannot slip in
// between the capacity check and the write.
func (s *Store) UpdateTour(ctx context.Context, t models.Tour) (models.Tour, error) {
	var updated models.Tour
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM tours WHERE id = $1 FOR UPDATE`, t.ID).Scan(&locked); err != nil {
			return mapErr(err, nil)
		}
		var booked int
		if err := tx.QueryRow(ctx, `SELECT COUNT(1) FROM bookings WHERE tour_id = $1`, t.ID).Scan(&booked); err != nil {
			return err
		}
		if t.MaxParticipants < booked {
			return store.ErrCapacityBelowBookings
		}

		var err error
		updated, err = scanTour(tx.QueryRow(ctx,
			`UPDATE tours t
                SET title = $1,
                    description = $2,
                    image_url = $3,
                    price = $4,
                    duration = $5,
                    date = $6,
                    max_participants = $7,
                    updated_at = $8
              WHERE t.id = $9
          RETURNING `+tourColumns,
			t.Title, t.Description, t.ImageURL, t.Price, t.Duration, t.Date, t.MaxParticipants, t.UpdatedAt, t.ID,
		))
		return mapErr(err, nil)
	})
	if err != nil {
		return models.Tour{}, err
	}
	return updated, nil
}

// DeleteTour relies on ON DELETE CASCADE for bookings and reviews.
func (s *Store) DeleteTour(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
