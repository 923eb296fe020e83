package postgres

import (
	"context"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
)

func (s *Store) CreateReview(ctx context.Context, r models.Review) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reviews (id, tour_id, user_id, reviewer_id, rating, comment, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.TourID, r.UserID, r.ReviewerID, r.Rating, r.Comment, r.CreatedAt,
	)
	return mapErr(err, store.ErrAlreadyReviewed)
}

func (s *Store) FindReview(ctx context.Context, tourID, reviewerID uuid.UUID) (models.Review, error) {
	var r models.Review
	err := s.pool.QueryRow(ctx,
		`SELECT id, tour_id, user_id, reviewer_id, rating, comment, created_at
           FROM reviews WHERE tour_id = $1 AND reviewer_id = $2`, tourID, reviewerID,
	).Scan(&r.ID, &r.TourID, &r.UserID, &r.ReviewerID, &r.Rating, &r.Comment, &r.CreatedAt)
	return r, mapErr(err, nil)
}

func (s *Store) ListReviewsByGuide(ctx context.Context, guideID uuid.UUID) ([]models.ReviewDetail, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.tour_id, r.user_id, r.reviewer_id, r.rating, r.comment, r.created_at,
                COALESCE(t.title, ''), COALESCE(u.name, '')
           FROM reviews r
           LEFT JOIN tours t ON t.id = r.tour_id
           LEFT JOIN users u ON u.id = r.reviewer_id
          WHERE r.user_id = $1
          ORDER BY r.created_at DESC, r.id`, guideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ReviewDetail, 0)
	for rows.Next() {
		var d models.ReviewDetail
		if err := rows.Scan(&d.ID, &d.TourID, &d.UserID, &d.ReviewerID, &d.Rating, &d.Comment, &d.CreatedAt,
			&d.TourTitle, &d.ReviewerName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
