package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
)

// CreateBooking takes a row lock on the tour, then checks for an existing
// booking by the same user and for a free spot before inserting. Concurrent
// callers for the same tour queue on the lock, so the count they see always
// includes every committed booking. The (tour_id, user_id) unique constraint
// backs up the duplicate check.
func (s *Store) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var maxParticipants int
		if err := tx.QueryRow(ctx,
			`SELECT max_participants FROM tours WHERE id = $1 FOR UPDATE`, b.TourID,
		).Scan(&maxParticipants); err != nil {
			return mapErr(err, nil)
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM bookings WHERE tour_id = $1 AND user_id = $2)`, b.TourID, b.UserID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return store.ErrAlreadyBooked
		}

		var booked int
		if err := tx.QueryRow(ctx, `SELECT COUNT(1) FROM bookings WHERE tour_id = $1`, b.TourID).Scan(&booked); err != nil {
			return err
		}
		if booked >= maxParticipants {
			return store.ErrFullyBooked
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO bookings (id, tour_id, user_id, created_at) VALUES ($1, $2, $3, $4)`,
			b.ID, b.TourID, b.UserID, b.CreatedAt,
		)
		return mapErr(err, store.ErrAlreadyBooked)
	})
	if err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.TourID, &b.UserID, &b.CreatedAt)
	return b, err
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	b, err := scanBooking(s.pool.QueryRow(ctx,
		`SELECT id, tour_id, user_id, created_at FROM bookings WHERE id = $1`, id))
	return b, mapErr(err, nil)
}

func (s *Store) FindBooking(ctx context.Context, tourID, userID uuid.UUID) (models.Booking, error) {
	b, err := scanBooking(s.pool.QueryRow(ctx,
		`SELECT id, tour_id, user_id, created_at FROM bookings WHERE tour_id = $1 AND user_id = $2`, tourID, userID))
	return b, mapErr(err, nil)
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]models.BookingDetail, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT bk.id, bk.tour_id, bk.user_id, bk.created_at, `+tourColumns+`,
                COALESCE((SELECT COUNT(1) FROM bookings b WHERE b.tour_id = t.id), 0) AS booked_count,
                COALESCE(u.name, '') AS creator_name
           FROM bookings bk
           JOIN tours t ON t.id = bk.tour_id
           LEFT JOIN users u ON u.id = t.creator_id
          WHERE bk.user_id = $1
          ORDER BY bk.created_at DESC, bk.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.BookingDetail, 0)
	for rows.Next() {
		var d models.BookingDetail
		t := &d.Tour.Tour
		if err := rows.Scan(&d.ID, &d.TourID, &d.UserID, &d.CreatedAt,
			&t.ID, &t.Title, &t.Description, &t.ImageURL, &t.Price, &t.Duration, &t.Date,
			&t.MaxParticipants, &t.CreatorID, &t.CreatedAt, &t.UpdatedAt,
			&d.Tour.BookedCount, &d.Tour.CreatorName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GuideStats aggregates reviews and completed tours for a guide.
func (s *Store) GuideStats(ctx context.Context, guideID uuid.UUID, now time.Time) (models.GuideStats, error) {
	var st models.GuideStats
	if err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(rating), 0), COUNT(1) FROM reviews WHERE user_id = $1`, guideID,
	).Scan(&st.RatingSum, &st.TotalReviews); err != nil {
		return models.GuideStats{}, err
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(1),
                COUNT(1) FILTER (WHERE (SELECT COUNT(1) FROM bookings b WHERE b.tour_id = t.id) > 1)
           FROM tours t
          WHERE t.creator_id = $1 AND t.date < $2`, guideID, now,
	).Scan(&st.TotalCompletedTours, &st.SuccessfulTours); err != nil {
		return models.GuideStats{}, err
	}
	return st, nil
}
