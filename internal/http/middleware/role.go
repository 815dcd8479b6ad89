package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RequireRoles is role-based access control. Only requests whose
// authenticated principal carries one of allowedRoles pass. Assumes
// Authenticate ran earlier in the chain.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToUpper(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		user := GetAuthUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "Unauthorized: No user in request",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		if _, ok := allowed[strings.ToUpper(strings.TrimSpace(user.Role))]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":   false,
				"message":   "Forbidden: Access denied",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		c.Next()
	}
}
