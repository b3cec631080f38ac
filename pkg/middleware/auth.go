// Package middleware holds the HTTP middleware of the mock vendor API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/vendordesk/pkg/auth"
	"github.com/shashiranjanraj/vendordesk/pkg/response"
)

type claimsKey struct{}

// Auth rejects requests without a valid bearer token signed with secret and
// stores the token's claims in the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				response.Unauthorized(w)
				return
			}
			claims, err := auth.Verify(secret, token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// Claims returns the claims Auth stored, or nil.
func Claims(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

// RequireRole lets through only tokens carrying one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := Claims(r.Context())
			if c == nil {
				response.Unauthorized(w)
				return
			}
			for _, role := range roles {
				if c.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w)
		})
	}
}
