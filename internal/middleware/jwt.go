package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/config"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
	"GOTOURS_BACK-END/internal/utils"
)

// JWTClaims represents the claims in the JWT token
type JWTClaims struct {
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken generates a JWT token for the given user
func GenerateToken(user models.User, cfg *config.JWTConfig) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string, cfg *config.JWTConfig) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.UserID != uuid.Nil {
		return claims, nil
	}

	return nil, jwt.ErrTokenMalformed
}

// TokenIssuer signs session tokens for signed-in users
type TokenIssuer struct {
	cfg *config.JWTConfig
}

// NewTokenIssuer creates a TokenIssuer
func NewTokenIssuer(cfg *config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg}
}

// IssueToken signs a token for the user
func (i *TokenIssuer) IssueToken(user models.User) (string, error) {
	return GenerateToken(user, i.cfg)
}

// UserLookup loads the current state of a signed-in user
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
}

// AuthMiddleware validates JWT tokens in the Authorization header and puts
// the session actor on the request context. The token only identifies the
// user: role and email are re-read from users on every request, so a role
// change takes effect without a new sign-in.
func AuthMiddleware(next http.HandlerFunc, cfg *config.JWTConfig, users UserLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Authorization header required")
			return
		}

		// Extract token from "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid authorization header format")
			return
		}

		claims, err := ValidateToken(tokenParts[1], cfg)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
			return
		}

		user, err := users.GetUser(r.Context(), claims.UserID)
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User no longer exists")
			return
		}
		if err != nil {
			logging.FromContext(r.Context()).Error().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to load session user")
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load session user")
			return
		}
		if user.Role != claims.Role {
			logging.FromContext(r.Context()).Debug().Str("user_id", user.ID.String()).Str("token_role", string(claims.Role)).
				Str("role", string(user.Role)).Msg("Session role differs from token")
		}

		// Add user info to request context
		ctx := utils.WithActor(r.Context(), authz.Actor{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
