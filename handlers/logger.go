package handlers

import (
	"net/http"

	"carenest/models"
	"carenest/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request scoped logger or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// actorFrom reads the caller set by JWTAuthMiddleware. It answers 401 and
// returns false when the context carries no caller.
func actorFrom(c *gin.Context) (models.Actor, bool) {
	userID := c.GetString("userID")
	raw, _ := c.Get("role")
	role, _ := raw.(models.Role)
	if userID == "" || role == "" {
		getLogger(c).Error("caller not found in context")
		utils.Failure(c, http.StatusUnauthorized, "Unauthorized", nil)
		return models.Actor{}, false
	}
	return models.Actor{UserID: userID, Role: role}, true
}

func badRequest(c *gin.Context, err error) {
	getLogger(c).Debug("invalid request", zap.Error(err))
	utils.Failure(c, http.StatusBadRequest, "Invalid request", err.Error())
}
