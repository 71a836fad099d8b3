package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kendall-kelly/estate-inquiries-api/logger"
)

// SignHS256Token mints a token for subject. Used for local development and tests.
func SignHS256Token(subject, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return token, nil
}

// ParseHS256Token verifies a token signed with secret and returns its claims
func ParseHS256Token(tokenString, secret string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithLeeway(time.Minute))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid JWT")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("JWT has no subject")
	}
	return claims, nil
}

// EnsureValidHS256Token validates bearer tokens signed with a shared
// secret. The claims are stored in the same shape Auth0 validation uses.
func EnsureValidHS256Token(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			writeInvalidToken(c.Writer)
			c.Abort()
			return
		}

		claims, err := ParseHS256Token(raw, secret)
		if err != nil {
			logger.Get().Warn().Err(err).Msg("Encountered error while validating JWT")
			writeInvalidToken(c.Writer)
			c.Abort()
			return
		}

		setClaims(c, &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{
				Issuer:   claims.Issuer,
				Subject:  claims.Subject,
				Audience: claims.Audience,
			},
			CustomClaims: &CustomClaims{},
		})
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter browsers use for websocket upgrades
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.Query("access_token"); token != "" {
		return token, true
	}
	return "", false
}
