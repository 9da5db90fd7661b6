package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireUser guards routes that need an authenticated caller.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ok := UserFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Authentication required",
				},
			})
			return
		}

		c.Next()
	}
}
