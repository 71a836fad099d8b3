package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"github.com/kendall-kelly/estate-inquiries-api/models"
)

// UserLookup maps a token subject to a user row
type UserLookup interface {
	FindUserByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error)
}

// ResolveCaller loads the user behind the token subject and stores the
// caller in the Gin context. notFound is the lookup's "no such row" error.
func ResolveCaller(users UserLookup, notFound error) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := GetUserID(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		user, err := users.FindUserByAuth0ID(c.Request.Context(), subject)
		if errors.Is(err, notFound) {
			abortWithError(c, http.StatusForbidden, "USER_NOT_REGISTERED", "User is not registered")
			return
		}
		if err != nil {
			logger.Get().Error().Err(err).Str("subject", subject).Msg("Failed to resolve caller")
			abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to resolve user")
			return
		}

		c.Set(CallerKey, models.CallerFromUser(user))
		c.Next()
	}
}

// GetCaller returns the caller stored by ResolveCaller
func GetCaller(c *gin.Context) (models.Caller, error) {
	value, exists := c.Get(CallerKey)
	if !exists {
		return models.Caller{}, &AuthError{Code: "MISSING_CALLER", Message: "Caller not found in context"}
	}
	caller, ok := value.(models.Caller)
	if !ok {
		return models.Caller{}, &AuthError{Code: "INVALID_CALLER", Message: "Caller is not in the expected format"}
	}
	return caller, nil
}

// RequireRole rejects callers whose role is not one of roles
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := GetCaller(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions to access this resource")
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
