// Package identity propagates the acting user id through a request's
// context.Context. Downstream code (audit columns, ownership checks) reads
// the actor with ActorID instead of consulting any ambient per-worker state,
// so an id can never outlive its request or leak into another one.
package identity

import "context"

type ctxKey struct{}

// WithActor returns a context carrying userID as the acting user.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// WithoutActor returns a context with any actor id removed. Used when a
// request turns out to have no session, so a value set earlier in the
// chain cannot survive.
func WithoutActor(ctx context.Context) context.Context {
	if _, ok := ctx.Value(ctxKey{}).(string); !ok {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, "")
}

// ActorID returns the acting user id and whether one is set.
func ActorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
