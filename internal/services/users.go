package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/models"
)

// UserRepository is the persistence the user service needs.
type UserRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role, at time.Time) (models.User, error)
}

// UserService exposes the user directory and role management.
type UserService struct {
	repo UserRepository
	opts options
}

// NewUserService creates a UserService.
func NewUserService(repo UserRepository, opts ...Option) *UserService {
	return &UserService{repo: repo, opts: defaultOptions(opts)}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return models.User{}, fromStore(err, "user", "load user")
	}
	return u, nil
}

// ListUsers returns every user, newest first. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor authz.Actor) ([]models.User, error) {
	if !actor.IsAuthenticated() {
		return nil, unauthorized("sign in to list users")
	}
	if !authz.CanManageRoles(actor) {
		return nil, forbidden("only admins can list users")
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fromStore(err, "user", "list users")
	}
	return users, nil
}

// UpdateRole changes a user's role. Admin only.
func (s *UserService) UpdateRole(ctx context.Context, actor authz.Actor, userID uuid.UUID, role string) (models.User, error) {
	if !actor.IsAuthenticated() {
		return models.User{}, unauthorized("sign in to change roles")
	}
	if !authz.CanManageRoles(actor) {
		return models.User{}, forbidden("only admins can change roles")
	}
	parsed, ok := models.ParseRole(role)
	if !ok {
		return models.User{}, invalid("role", "role must be one of USER, GUIDE, ADMIN")
	}

	u, err := s.repo.UpdateUserRole(ctx, userID, parsed, s.opts.utcNow())
	if err != nil {
		return models.User{}, fromStore(err, "user", "update role")
	}

	logging.FromContext(ctx).Info().
		Str("user_id", userID.String()).
		Str("role", string(parsed)).
		Str("actor_id", actor.ID.String()).
		Msg("user role changed")
	return u, nil
}
