// Package auth, as part of the authentication module.
// This file, `middleware.go`, defines the HTTP middleware that turns a bearer
// token into a domain.Requester, plus the role gate built on top of it.
// Middleware conforms to the standard Go `func(next http.Handler) http.Handler`
// pattern so it plugs straight into chi's r.Use(...).
package auth

import (
	"net/http"
	// `strings` for splitting the Authorization header.
	"strings"

	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/domain"
	"github.com/user/timemanager-go/httpx"
	"github.com/user/timemanager-go/policy"
)

// JWTMiddleware verifies the access token from the Authorization header,
// rejects revoked tokens, and stores the requester in the request context.
func JWTMiddleware(tokens *TokenManager, revoker Revoker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				httpx.WriteError(w, r, apperror.NewAuthError("Authorization header required", nil))
				return
			}

			claims, err := tokens.ParseAccess(tokenString)
			if err != nil {
				httpx.WriteError(w, r, apperror.NewAuthError("Invalid or expired token", err))
				return
			}

			revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				// Failing open would let a logged-out token back in.
				httpx.LoggerFrom(r.Context()).Error("revocation lookup failed", zap.Error(err))
				httpx.WriteError(w, r, apperror.NewUnavailableError("authentication temporarily unavailable", err))
				return
			}
			if revoked {
				httpx.WriteError(w, r, apperror.NewAuthError("Invalid or expired token", nil))
				return
			}

			// ParseAccess already validated the subject.
			userID, _ := claims.UserID()
			requester := domain.Requester{ID: userID, Role: claims.Role}

			ctx := NewContextWithRequester(r.Context(), requester)
			ctx = newContextWithClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireRole rejects requesters that hold none of roles with 403.
// It must be mounted behind JWTMiddleware.
func RequireRole(roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester, ok := RequesterFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, r, apperror.NewAuthError("User not authenticated", nil))
				return
			}
			if err := policy.RequireRole(requester, roles...); err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MustRequester is used by handlers mounted behind JWTMiddleware. A missing
// requester means the route was wired without the middleware.
func MustRequester(w http.ResponseWriter, r *http.Request) (domain.Requester, bool) {
	requester, ok := RequesterFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperror.NewAuthError("User not authenticated", nil))
	}
	return requester, ok
}
