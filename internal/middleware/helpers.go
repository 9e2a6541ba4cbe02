// internal/middleware/helpers.go
package middleware

import (
	"leadscout-service/internal/pkg/jwt"
	"leadscout-service/internal/pkg/roles"

	"github.com/gin-gonic/gin"
)

// GetUserID gets the authenticated user ID from context.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetUserID gets the user ID from context or panics.
func MustGetUserID(c *gin.Context) int64 {
	id, ok := GetUserID(c)
	if !ok {
		panic("user_id not found in context")
	}
	return id
}

// GetJTI gets the access token JTI from context.
func GetJTI(c *gin.Context) (string, bool) {
	v, exists := c.Get("jti")
	if !exists {
		return "", false
	}
	jti, ok := v.(string)
	return jti, ok
}

// GetClaims gets the full verified claims from context.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// GetRoles gets the normalized role set from context.
func GetRoles(c *gin.Context) roles.Set {
	v, exists := c.Get("roles")
	if !exists {
		return roles.Set{}
	}
	set, ok := v.(roles.Set)
	if !ok {
		return roles.Set{}
	}
	return set
}

// IsAuthenticated checks if the request carries a verified principal.
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}

// IsAdmin checks if the authenticated user is an administrator.
func IsAdmin(c *gin.Context) bool {
	return GetRoles(c).IsAdmin()
}
