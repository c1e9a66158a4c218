package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"admin_codegen/internal/utils"
)

// Context keys set by Authenticate.
const (
	ClaimsKey   = "claims"
	UserNameKey = "userName"
)

// Authenticate verifies the bearer token and stores its claims in the context.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing Authorization header"})
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid Authorization format"})
			return
		}

		claims, err := utils.VerifyJWT(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserNameKey, claims.UserName)
		c.Next()
	}
}

// CurrentClaims returns the claims stored by Authenticate.
func CurrentClaims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// Operator returns the user name of the authenticated caller.
func Operator(c *gin.Context) string {
	return c.GetString(UserNameKey)
}
