package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mizutanik/tasktree-api/internal/constants"
	apierrors "github.com/mizutanik/tasktree-api/internal/errors"
	"github.com/mizutanik/tasktree-api/internal/models"
	"github.com/mizutanik/tasktree-api/internal/services"
)

// RequireAuth validates the bearer token and injects the authenticated user
// into the request context. A token that parses but whose subject no longer
// exists is rejected with 403.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := authService.VerifyToken(token)
		if err != nil {
			if errors.Is(err, services.ErrTokenSubjectGone) {
				apierrors.Forbidden(c, "Token subject no longer exists")
			} else {
				apierrors.Unauthorized(c, "Invalid or expired token")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// GetCurrentUser retrieves the authenticated user from context.
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
