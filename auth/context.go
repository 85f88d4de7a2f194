// Package auth, as part of the authentication module.
// This file, `context.go`, carries the authenticated requester through the
// request's context.Context. The context is Go's standard way to pass
// request-scoped values, cancellation signals and deadlines across API
// boundaries, so every handler behind the JWT middleware can ask "who is
// calling?" without re-reading the token.
package auth

import (
	"context"

	"github.com/user/timemanager-go/domain"
)

// `contextKey` is a custom type for context keys. Using a custom type prevents
// collisions with context keys defined in other packages.
type contextKey string

const (
	requesterContextKey contextKey = "auth_requester"
	claimsContextKey    contextKey = "auth_claims"
)

// NewContextWithRequester returns a child context carrying the requester.
func NewContextWithRequester(ctx context.Context, requester domain.Requester) context.Context {
	return context.WithValue(ctx, requesterContextKey, requester)
}

// RequesterFromContext extracts the requester stored by the middleware.
// The second return value reports whether one was present.
func RequesterFromContext(ctx context.Context) (domain.Requester, bool) {
	requester, ok := ctx.Value(requesterContextKey).(domain.Requester)
	return requester, ok
}

// newContextWithClaims keeps the parsed access token claims around for logout,
// which needs the token id and expiry.
func newContextWithClaims(ctx context.Context, claims *CustomClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts the access token claims stored by the middleware.
func ClaimsFromContext(ctx context.Context) (*CustomClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*CustomClaims)
	return claims, ok
}
