package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/pkg/auth"
)

const identityKey = "identity"

// RequireAuth rejects requests without a valid bearer token and stores
// the caller identity on the context for the handlers.
func RequireAuth(tokens *auth.TokenManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "No access token provided",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		identity, err := tokens.Verify(tokenString)
		if err != nil {
			logger.Warn("Rejected invalid token", zap.String("request_id", RequestIDFrom(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid access token",
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireAuth.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}
