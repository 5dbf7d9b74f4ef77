// Package auth provides JWT bearer authentication. Tokens are issued by
// the external identity provider and verified against its JWKS endpoint.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the context key for storing verified JWT claims.
const ClaimsKey contextKey = "claims"

// Claims is the token payload issued by the identity provider. It embeds
// RegisteredClaims for the standard fields (sub, iss, exp) and adds the
// role and display name used for authorization and notifications.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserID parses the subject claim as the user's UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	return id, nil
}

// HasRole reports whether the claim's role is one of the given roles.
func (c *Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// GetClaims retrieves verified claims from the request context.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// MustUserID extracts the authenticated user's UUID from context claims.
func MustUserID(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, fmt.Errorf("authentication required: no claims in context")
	}
	return claims.UserID()
}
