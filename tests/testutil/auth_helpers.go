package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-inquiries-api/middleware"
	"github.com/kendall-kelly/estate-inquiries-api/models"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{},
	}
}

// MockAuthMiddleware stands in for token validation plus caller
// resolution, storing the user exactly as the real chain does
func MockAuthMiddleware(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.Auth0ID)
		c.Set(middleware.ClaimsKey, MockValidatedClaims(user.Auth0ID, "https://test.auth0.com/"))
		c.Set(middleware.CallerKey, models.CallerFromUser(&user))
		c.Next()
	}
}
