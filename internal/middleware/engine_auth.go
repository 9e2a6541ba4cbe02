// internal/middleware/engine_auth.go
package middleware

import (
	"crypto/subtle"

	"leadscout-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// EngineAuth guards callback endpoints exposed to the scraping engine. The
// engine authenticates with a static shared token rather than a user JWT.
// An empty configured token disables the callbacks entirely.
func EngineAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader("X-Engine-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			response.Unauthorized(c, "invalid engine token")
			return
		}
		c.Next()
	}
}
