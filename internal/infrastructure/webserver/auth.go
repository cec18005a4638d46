package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"truthtracker/internal/ports"
)

// AuthMiddleware gates admin routes behind the injected authorization
// policy. The principal is the bearer token from the Authorization header.
func AuthMiddleware(policy ports.AuthorizationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if policy == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		principal := bearerToken(c.GetHeader("Authorization"))
		if !policy.IsAuthorized(principal) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. Admin privileges required."})
			return
		}

		c.Set("principal", principal)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
