package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/backend/internal/authz"
	"taskboard/backend/internal/middleware"
)

// principalFromContext pulls the authenticated principal placed by the
// authentication middleware. A missing principal means the route was
// wired without it, which is a 401, not a 500.
func principalFromContext(c *gin.Context) (authz.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "missing_token",
			"message": "Authentication required",
		})
		return authz.Principal{}, false
	}
	return p, true
}
