// Package oauthstate keeps OAuth CSRF state values between the login
// redirect and the provider callback. A state can be consumed once.
package oauthstate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"GOTOURS_BACK-END/internal/config"
)

// Store saves states with a TTL and consumes them once.
type Store interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume deletes the state and reports whether it was present and
	// not expired.
	Consume(ctx context.Context, state string) (bool, error)
}

// NewStore creates the state store selected by configuration
func NewStore(cfg *config.Config) (Store, error) {
	log.Info().Str("type", cfg.OAuthState.Store).Msg("Initializing oauth state store")
	switch cfg.OAuthState.Store {
	case config.StateStoreMemory:
		return NewMemoryStore(), nil
	case config.StateStoreRedis:
		return NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		return nil, fmt.Errorf("unsupported oauth state store: %s", cfg.OAuthState.Store)
	}
}
