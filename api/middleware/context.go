package middleware

import (
	"context"

	"github.com/angelmondragon/pizzeria/internal/storefront"
)

type contextKey string

const ctxSession contextKey = "storefront_session"

// SessionFromContext returns the storefront session resolved by Session.
func SessionFromContext(ctx context.Context) *storefront.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*storefront.Session); ok {
		return v
	}
	return nil
}

// WithSession injects the storefront session into the context for downstream handlers.
func WithSession(ctx context.Context, s *storefront.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, s)
}
