package httpx

import (
	"context"
	"time"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// Principal is whoever a verified bearer token speaks for.
type Principal struct {
	Subject   string // owner id, or the client id for client-only tokens
	OwnerID   string // empty for client-only tokens
	ClientID  string
	Scopes    []string
	ExpiresAt *time.Time
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the principal attached by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}

func scopesFromCtx(ctx context.Context) []string {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.Scopes
	}
	return nil
}
