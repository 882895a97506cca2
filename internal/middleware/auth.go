package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"grimoire-server/internal/auth"
	"grimoire-server/internal/models"
)

// RequireAuth rejects requests without a valid bearer token. The check
// runs before any handler work, so unauthenticated calls never reach the
// external model API.
func RequireAuth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractClaims(c, verifier)
		if err != nil {
			code := models.ErrCodeTokenInvalid
			if err == models.ErrTokenExpired {
				code = models.ErrCodeTokenExpired
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    code,
				Message: "Unauthorized",
			})
			return
		}
		c.Set(models.ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// OptionalAuth resolves the user when a token is present but lets
// anonymous requests through. Used by the level list, which serves the
// built-in levels with initial statuses to anonymous callers.
func OptionalAuth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := extractClaims(c, verifier); err == nil {
			c.Set(models.ContextKeyUserID, claims.UserID)
		}
		c.Next()
	}
}

func extractClaims(c *gin.Context, verifier *auth.Verifier) (*auth.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, models.ErrTokenInvalid
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		zap.L().Warn("Malformed Authorization header", zap.String("path", c.Request.URL.Path))
		return nil, models.ErrTokenMalformed
	}
	return verifier.VerifyAccessToken(parts[1])
}

// UserID returns the authenticated user id from the gin context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(models.ContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
