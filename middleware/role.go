package middleware

import (
	"net/http"

	"trustwork/models"

	"github.com/gin-gonic/gin"
)

// RequireAdmin gates a route group to admin and super_admin tokens. Must run
// after JWTAuthMiddleware so the role claim is in context.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := contextRole(c)
		if role != models.RoleAdmin && role != models.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin gates a route group to super_admin tokens only.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if contextRole(c) != models.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "super admin access required"})
			return
		}
		c.Next()
	}
}

func contextRole(c *gin.Context) models.Role {
	v, ok := c.Get("userRole")
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return models.Role(s)
}
