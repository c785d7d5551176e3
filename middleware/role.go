package middleware

import (
	"net/http"

	"carenest/models"
	"carenest/utils"

	"github.com/gin-gonic/gin"
)

// RequireRoles admits only callers whose role is one of roles. It must run
// after JWTAuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		raw, _ := c.Get("role")
		role, _ := raw.(models.Role)
		if !allowed[role] {
			utils.Failure(c, http.StatusForbidden, "Insufficient permissions", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
