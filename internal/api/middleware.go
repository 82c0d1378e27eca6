package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mlthieu/linkstats/internal/models"
	"github.com/mlthieu/linkstats/internal/services"
)

// userContextKey is where the authenticated user is stored on the gin context.
const userContextKey = "user"

// AuthMiddleware verifies the Authorization bearer token and loads the
// authenticated user onto the request context. Requests without a valid
// token are rejected with 401.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abortUnauthorized(c, "Bearer token required")
			return
		}

		user, err := authService.VerifyToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// currentUser returns the authenticated user set by AuthMiddleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
	})
}
