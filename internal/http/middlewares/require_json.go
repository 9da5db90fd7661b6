package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects body-carrying requests whose Content-Type is not JSON
// before any handler tries to bind them.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hasBody(c.Request.Method) {
			c.Next()
			return
		}

		ct := strings.ToLower(c.GetHeader("Content-Type"))

		// "application/json; charset=utf-8" counts
		if !strings.HasPrefix(ct, "application/json") {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": gin.H{
					"code":    "unsupported_media_type",
					"message": "Content-Type must be application/json",
				},
			})
			return
		}

		c.Next()
	}
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}

	return false
}
