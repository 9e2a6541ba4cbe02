// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"

	"leadscout-service/internal/pkg/roles"
)

// Claims represents the JWT claims carried by platform tokens.
type Claims struct {
	UserID  int64    `json:"user_id"`
	Email   string   `json:"email,omitempty"`
	Roles   []string `json:"roles,omitempty"`
	Purpose string   `json:"purpose"` // access or refresh
	jwt.RegisteredClaims
}

// RoleSet returns the normalized role set for the claims.
func (c *Claims) RoleSet() roles.Set {
	return roles.FromStrings(c.Roles)
}

// IsAdmin checks if the claims grant administrator access.
func (c *Claims) IsAdmin() bool {
	return c.RoleSet().IsAdmin()
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}

	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}

	return false
}
