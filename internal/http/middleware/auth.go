package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"schoolcampus/internal/auth"
	"schoolcampus/internal/domain"
	"schoolcampus/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const authUserKey = "user"

// Authenticate verifies the bearer token and loads the principal, including
// the organisation it acts for, into the request context. Routes without
// this middleware run as unauthenticated writes (no attribution stamping).
func Authenticate(tokens *auth.Manager, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Unauthorized: No token provided")
			return
		}

		claims, err := tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.ID, services.UserHideKeys)
		if err != nil || user == nil {
			abortUnauthorized(c, "Unauthorized: User not found")
			return
		}

		principal := &domain.AuthUser{
			ID:   user.ID.Hex(),
			Name: user.Name,
			Role: user.Role,
		}
		if principal.Role == "" {
			principal.Role = "USER"
		}
		if org := user.Organisation; org != nil {
			principal.Organisation = &domain.OrgRef{
				ID:   attributionIDHex(org.ID),
				Name: org.Name,
			}
		}

		c.Set(authUserKey, principal)
		c.Next()
	}
}

// GetAuthUser returns the authenticated principal, or nil on public routes.
func GetAuthUser(c *gin.Context) *domain.AuthUser {
	if v, ok := c.Get(authUserKey); ok {
		if user, ok := v.(*domain.AuthUser); ok {
			return user
		}
	}
	return nil
}

func attributionIDHex(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":   false,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
