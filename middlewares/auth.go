package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"powerpulse/apperrors"
	"powerpulse/services"
	"powerpulse/utils"
)

// Context keys set by the auth middleware
const (
	ContextUID   = "uid"
	ContextEmail = "email"
)

// AuthMiddleware verifies the bearer token and attaches the identity to
// the request context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": "Missing Authorization token"}})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": "Invalid Authorization token format"}})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": "Invalid or expired token"}})
			c.Abort()
			return
		}

		c.Set(ContextUID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// IdentityFrom builds the request identity from context values set by
// AuthMiddleware. Zero identity on unauthenticated requests.
func IdentityFrom(c *gin.Context) services.Identity {
	return services.Identity{
		UID:   c.GetString(ContextUID),
		Email: c.GetString(ContextEmail),
	}
}

// AdminMiddleware requires an authenticated identity whose user record
// carries the persisted admin flag
func AdminMiddleware(policy *services.AccessPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := policy.RequireAdmin(c.Request.Context(), IdentityFrom(c))
		if err != nil {
			appErr := apperrors.As(err)
			status := http.StatusForbidden
			if appErr.Code == apperrors.CodeUnauthenticated {
				status = http.StatusUnauthorized
			} else if appErr.Code == apperrors.CodeOperationFailed {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": appErr})
			c.Abort()
			return
		}
		c.Next()
	}
}
