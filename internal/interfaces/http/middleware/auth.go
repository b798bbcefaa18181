// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/pkg/auth"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
)

// AuthMiddleware creates JWT authentication middleware. The validated
// claims become an authz.Actor in the request context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		actor := authz.Actor{
			UserID:      claims.UserID,
			Email:       claims.Email,
			Role:        authz.Role(claims.Role),
			IsSuperuser: claims.IsSuperuser,
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("actor", actor)

		c.Next()
	}
}

// RequireCapability ensures the authenticated actor holds the capability
func RequireCapability(cap authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !actor.Has(cap) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions for this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminMiddleware ensures the user is an admin or superuser
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !actor.IsSuperuser && actor.Role != authz.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetActor extracts the authenticated actor from the request context
func GetActor(c *gin.Context) (authz.Actor, bool) {
	value, exists := c.Get("actor")
	if !exists {
		return authz.Actor{}, false
	}
	actor, ok := value.(authz.Actor)
	return actor, ok
}
