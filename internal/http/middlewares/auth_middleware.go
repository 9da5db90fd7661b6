package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type IdentityLookup interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users IdentityLookup
	log   *slog.Logger
}

func NewAuthMiddleware(jwt TokenVerifier, users IdentityLookup, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, log: log}
}

// Authenticate runs once per request. No bearer token means the request
// continues anonymous; a bearer token that fails verification short-circuits
// with 400 before any handler runs; a valid one resolves the subject into a
// full user and stashes it on the request context. The context dies with the
// request, so nothing leaks across requests.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := auth.ExtractBearer(c.GetHeader("Authorization"))

		if !ok {
			c.Next()
			return
		}

		claims, err := m.jwt.Verify(raw)

		if err != nil {
			m.log.Warn("token rejected", "reason", err)

			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "invalid_token",
					"message": "Token is not valid",
				},
			})
			return
		}

		u, err := m.users.GetByUsername(c.Request.Context(), claims.Username())

		if err != nil {
			// subject vanished since the token was issued
			m.log.Warn("token subject not found", "subject", claims.Username())

			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "invalid_token",
					"message": "Token is not valid",
				},
			})
			return
		}

		SetUser(c, u)

		c.Next()
	}
}

// SetUser publishes the authenticated identity for downstream handlers.
func SetUser(c *gin.Context, u user.User) {
	c.Set(ctxUserKey, u)
}

// UserFromContext returns the authenticated user, if any, so handlers never
// touch the magic key.
func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
