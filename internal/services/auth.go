package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/identity"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
)

// AuthRepository is the persistence the auth service needs.
type AuthRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) error
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
}

// IdentityProvider is the external OAuth sign-in.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (identity.UserInfo, error)
}

// StateStore keeps OAuth CSRF states until they are consumed once.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	IssueToken(u models.User) (string, error)
}

// AuthConfig holds the sign-in settings.
type AuthConfig struct {
	// AdminEmail is always signed in as ADMIN.
	AdminEmail string
	// BootstrapSecretHash is the bcrypt hash guarding ClaimAdmin.
	BootstrapSecretHash string
	StateTTL            time.Duration
}

// LoginStart is the redirect target of a new sign-in.
type LoginStart struct {
	AuthURL string
	State   string
}

// LoginResult is a signed-in user with their session token.
type LoginResult struct {
	User  models.User
	Token string
}

// AuthService handles sign-in and the admin bootstrap.
type AuthService struct {
	repo     AuthRepository
	provider IdentityProvider
	states   StateStore
	tokens   TokenIssuer
	cfg      AuthConfig
	opts     options
}

// NewAuthService creates an AuthService.
func NewAuthService(repo AuthRepository, provider IdentityProvider, states StateStore, tokens TokenIssuer, cfg AuthConfig, opts ...Option) *AuthService {
	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = 10 * time.Minute
	}
	return &AuthService{
		repo:     repo,
		provider: provider,
		states:   states,
		tokens:   tokens,
		cfg:      cfg,
		opts:     defaultOptions(opts),
	}
}

// BeginLogin stores a fresh state and returns the provider consent URL.
func (s *AuthService) BeginLogin(ctx context.Context) (LoginStart, error) {
	state := s.opts.newID().String()
	if err := s.states.Save(ctx, state, s.cfg.StateTTL); err != nil {
		return LoginStart{}, internal("failed to start login", err)
	}
	return LoginStart{AuthURL: s.provider.AuthCodeURL(state), State: state}, nil
}

// CompleteLogin validates the state, exchanges the code and signs the user in.
func (s *AuthService) CompleteLogin(ctx context.Context, state, code string) (LoginResult, error) {
	if strings.TrimSpace(code) == "" {
		return LoginResult{}, invalid("code", "authorization code is required")
	}
	if strings.TrimSpace(state) == "" {
		return LoginResult{}, unauthorized("missing oauth state")
	}
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return LoginResult{}, internal("failed to verify oauth state", err)
	}
	if !ok {
		return LoginResult{}, unauthorized("invalid or expired oauth state")
	}

	info, err := s.provider.Exchange(ctx, code)
	if err != nil {
		e := unauthorized("invalid authorization code")
		e.Err = err
		return LoginResult{}, e
	}
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		return LoginResult{}, unauthorized("the identity provider returned no email")
	}
	if !info.VerifiedEmail {
		return LoginResult{}, unauthorized("the identity provider has not verified this email")
	}

	role := models.RoleUser
	if s.isAdminEmail(email) {
		role = models.RoleAdmin
	}
	u, err := s.upsert(ctx, email, info.Name, info.Picture, role, s.isAdminEmail(email))
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokens.IssueToken(u)
	if err != nil {
		return LoginResult{}, internal("failed to issue session", err)
	}

	logging.FromContext(ctx).Info().
		Str("user_id", u.ID.String()).
		Str("role", string(u.Role)).
		Msg("user signed in")
	return LoginResult{User: u, Token: token}, nil
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context, actor authz.Actor) (models.User, error) {
	if !actor.IsAuthenticated() {
		return models.User{}, unauthorized("not signed in")
	}
	u, err := s.repo.GetUser(ctx, actor.ID)
	if err != nil {
		return models.User{}, fromStore(err, "user", "load user")
	}
	return u, nil
}

// ClaimAdmin creates or promotes the user with the given email to ADMIN when
// the bootstrap secret matches.
func (s *AuthService) ClaimAdmin(ctx context.Context, email, name, secret string) (models.User, error) {
	if s.cfg.BootstrapSecretHash == "" {
		return models.User{}, forbidden("admin bootstrap is disabled")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	v := validationErrors{}
	if email == "" {
		v.add("email", "email is required")
	}
	if secret == "" {
		v.add("secret", "secret is required")
	}
	if err := v.err(); err != nil {
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.BootstrapSecretHash), []byte(secret)); err != nil {
		logging.FromContext(ctx).Warn().Str("email", email).Msg("admin claim rejected")
		return models.User{}, forbidden("invalid bootstrap secret")
	}

	u, err := s.upsert(ctx, email, name, "", models.RoleAdmin, true)
	if err != nil {
		return models.User{}, err
	}

	logging.FromContext(ctx).Info().
		Str("user_id", u.ID.String()).
		Msg("admin claimed")
	return u, nil
}

func (s *AuthService) isAdminEmail(email string) bool {
	return s.cfg.AdminEmail != "" && email == s.cfg.AdminEmail
}

// upsert creates the user with newRole, or refreshes an existing one. An
// existing user keeps their role unless promote is set.
func (s *AuthService) upsert(ctx context.Context, email, name, image string, newRole models.Role, promote bool) (models.User, error) {
	name = strings.TrimSpace(name)
	now := s.opts.utcNow()

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		u := models.User{
			ID:        s.opts.newID(),
			Email:     email,
			Name:      name,
			Image:     image,
			Role:      newRole,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = s.repo.CreateUser(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return models.User{}, internal("failed to create user", err)
		}
		// lost a race with a concurrent sign-in; fall through and update
		existing, err = s.repo.GetUserByEmail(ctx, email)
	}
	if err != nil {
		return models.User{}, fromStore(err, "user", "load user")
	}

	if name != "" {
		existing.Name = name
	}
	if image != "" {
		existing.Image = image
	}
	if promote {
		existing.Role = models.RoleAdmin
	}
	existing.UpdatedAt = now
	u, err := s.repo.UpdateUser(ctx, existing)
	if err != nil {
		return models.User{}, fromStore(err, "user", "update user")
	}
	return u, nil
}
