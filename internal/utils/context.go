package utils

import (
	"context"

	"GOTOURS_BACK-END/internal/authz"
)

type actorKey struct{}

// WithActor stores the authenticated actor on the context
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, or authz.Anonymous
func ActorFromContext(ctx context.Context) authz.Actor {
	actor, ok := ctx.Value(actorKey{}).(authz.Actor)
	if !ok {
		return authz.Anonymous
	}
	return actor
}
