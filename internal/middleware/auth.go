package middleware

import (
	"net/http"

	"papeleria-be/internal/auth"
	"papeleria-be/internal/user"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware parses the access token when present and stores the claims
// on the request context. Anonymous requests pass through untouched.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := auth.ExtractAccessToken(c.Request)
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := auth.ParseJWT(tokenStr)
		if err != nil {
			c.Next()
			return
		}

		ctx := auth.SetUserContext(c.Request.Context(), claims.UserID, claims.Email, claims.Tier)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAuth aborts with 401 when no authenticated user is on the context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.GetUserIDFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated user is an administrator.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tier, ok := auth.GetUserTierFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if tier != int(user.TierAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
