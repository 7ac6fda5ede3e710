package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/platinummonkey/workboard/pkg/contextkeys"
)

// Claims are the session token claims. Subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// UserID returns the authenticated user's ID
func (c *Claims) UserID() string {
	return c.Subject
}

// ClaimsFromContext returns the claims stored by the auth middleware
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextkeys.AuthKey).(*Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated user ID, or "" when the
// request is anonymous
func UserIDFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.UserID()
	}
	return ""
}
