package middleware

import (
	"context"
	"net/http"
	"strings"

	"carenest/models"
	"carenest/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLoader resolves the account behind a session token.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// JWTAuthMiddleware validates the bearer token and stores the caller's id and
// role in the context. The role is read from the stored account, not the token.
func JWTAuthMiddleware(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := requestLogger(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			logger.Debug("rejected session token", zap.Error(err))
			abortUnauthorized(c, "Invalid token")
			return
		}

		usr, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || usr == nil {
			logger.Warn("token for unknown user", zap.String("userID", claims.UserID), zap.Error(err))
			abortUnauthorized(c, "Authentication error")
			return
		}

		c.Set("userID", usr.ID)
		c.Set("role", usr.Role)
		c.Set("logger", logger.With(zap.String("userID", usr.ID)))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	utils.Failure(c, http.StatusUnauthorized, message, nil)
	c.Abort()
}
