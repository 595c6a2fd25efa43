package middleware

import (
	"context"

	"github.com/chifaexpress/storefront-backend/internal/session"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the authenticated identity seeded by Auth, or
// nil when the request was not authenticated.
func IdentityFromContext(ctx context.Context) *session.Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*session.Identity); ok {
		return v
	}
	return nil
}

// WithIdentity injects the resolved identity into the context.
func WithIdentity(ctx context.Context, identity *session.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}
