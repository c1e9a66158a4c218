package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminRole is the role allowed to run raw SQL.
const AdminRole = "admin"

// RequirePermission rejects callers whose token does not grant perm.
// It must run after Authenticate.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		if !claims.HasPermission(perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Missing permission " + perm})
			return
		}
		c.Next()
	}
}

// RequireAdmin checks if the authenticated user is an admin.
// This middleware should be used after Authenticate middleware.
func RequireAdmin(c *gin.Context) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	if !claims.HasRole(AdminRole) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Admin privileges required."})
		return
	}
	c.Next()
}
