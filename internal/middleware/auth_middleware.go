// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"strings"

	"leadscout-service/internal/pkg/jwt"
	"leadscout-service/internal/pkg/response"
	"leadscout-service/internal/pkg/roles"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenBlacklist answers whether an access token JTI has been revoked.
type TokenBlacklist interface {
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Entitlements answers whether a user currently holds a valid subscription.
type Entitlements interface {
	IsEntitled(ctx context.Context, userID int64) (bool, error)
}

type AuthMiddleware struct {
	verifier     *jwt.Verifier
	blacklist    TokenBlacklist
	entitlements Entitlements
	logger       *zap.Logger
}

func NewAuthMiddleware(verifier *jwt.Verifier, blacklist TokenBlacklist, entitlements Entitlements, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:     verifier,
		blacklist:    blacklist,
		entitlements: entitlements,
		logger:       logger,
	}
}

// Auth is the base authentication middleware that validates access tokens.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			response.Error(c, 401, "invalid or expired token", err)
			return
		}

		revoked, err := m.blacklist.IsTokenBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			m.logger.Error("blacklist check failed", zap.Error(err))
			response.Error(c, 500, "internal server error", nil)
			return
		}
		if revoked {
			response.Unauthorized(c, "token has been revoked")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("jti", claims.ID)
		c.Set("roles", claims.RoleSet())
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireRole requires the user to hold at least one of the given roles.
// MUST be used after Auth().
func (m *AuthMiddleware) RequireRole(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		set := GetRoles(c)
		if len(set) == 0 {
			response.Forbidden(c, "no roles found - authentication required")
			return
		}

		if !set.HasAny(required...) {
			err := errors.New("user does not have required role")
			response.Error(c, 403, "insufficient permissions", err, map[string]interface{}{
				"required_roles": required,
				"user_roles":     set.Strings(),
			})
			return
		}

		c.Next()
	}
}

// RequireSubscription gates paying features. Admins pass without a
// subscription; everyone else needs one that is currently valid. The check
// is evaluated fresh per request, and any failure to determine entitlement
// denies access rather than letting the request through.
// MUST be used after Auth().
func (m *AuthMiddleware) RequireSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		set := GetRoles(c)
		if set.IsAdmin() {
			c.Next()
			return
		}

		userID, ok := GetUserID(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}

		entitled, err := m.entitlements.IsEntitled(c.Request.Context(), userID)
		if err != nil {
			m.logger.Warn("entitlement check failed, denying",
				zap.Int64("user_id", userID), zap.Error(err))
			response.PaymentRequired(c, "subscription status unavailable")
			return
		}
		if !entitled {
			response.PaymentRequired(c, "active subscription required")
			return
		}

		c.Next()
	}
}

// AdminOnly returns the middleware chain for admin-only routes.
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(roles.Admin),
	}
}

// Subscribed returns the middleware chain for subscriber-gated routes.
func (m *AuthMiddleware) Subscribed() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireSubscription(),
	}
}

// extractToken extracts the Bearer token from the Authorization header,
// falling back to the token query parameter for websocket upgrades.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}
