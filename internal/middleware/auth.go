package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/backend/internal/auth"
	"taskboard/backend/internal/authz"
)

const principalKey = "principal"

// Authentication verifies the Bearer access token and stores the
// resulting principal in the request context. Refresh tokens are
// rejected here; they are only good for the refresh endpoint.
func Authentication(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token_format",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := issuer.Verify(tokenStr, auth.TokenTypeAccess)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "expired_token",
					"message": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token validation failed",
			})
			return
		}

		userID, err := claims.UserUUID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token validation failed",
			})
			return
		}

		c.Set(principalKey, authz.Principal{UserID: userID, Role: claims.Role})
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (authz.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return authz.Principal{}, false
	}
	p, ok := value.(authz.Principal)
	return p, ok
}

// SetPrincipal exists for handler tests that bypass token verification.
func SetPrincipal(c *gin.Context, p authz.Principal) {
	c.Set(principalKey, p)
}
