package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/models"
)

const userColumns = `id, email, name, image, role, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &role, &u.CreatedAt, &u.UpdatedAt)
	u.Role = models.Role(role)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, image, role, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.Image, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	return mapErr(err, nil)
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr(err, nil)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	return u, mapErr(err, nil)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	updated, err := scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET name = $1, image = $2, role = $3, updated_at = $4
          WHERE id = $5
      RETURNING `+userColumns,
		u.Name, u.Image, string(u.Role), u.UpdatedAt, u.ID,
	))
	return updated, mapErr(err, nil)
}

func (s *Store) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role, at time.Time) (models.User, error) {
	updated, err := scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3 RETURNING `+userColumns,
		string(role), at, id,
	))
	return updated, mapErr(err, nil)
}
