package httpx

import (
	"context"

	"github.com/fixplanhq/fixplan/pkg/jwtx"
)

type claimsKey struct{}

// WithClaims stores verified access-token claims in ctx.
func WithClaims(ctx context.Context, claims jwtx.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the verified claims attached by the authn middleware.
func ClaimsFrom(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(jwtx.Claims)
	return c, ok
}
