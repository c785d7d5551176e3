package routes

import (
	"net/http"
	"time"

	"carenest/config"
	"carenest/handlers"
	"carenest/middleware"
	"carenest/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterAuthRoutes registers the phone OTP login endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/otp/request", hb.Auth.RequestOTPHandler)
		api.POST("/otp/verify", hb.Auth.VerifyOTPHandler)
	}
}

// RegisterUserRoutes registers the self service profile endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle, users middleware.UserLoader) {
	api := r.Group("/api/users/me")
	api.Use(middleware.JWTAuthMiddleware(users))
	{
		api.GET("", hb.User.GetProfileHandler)
		api.PATCH("", hb.User.UpdateProfileHandler)
		api.PUT("/fcm-token", hb.User.UpdateFCMTokenHandler)
		api.GET("/transactions", hb.User.ListTransactionsHandler)
	}
}

// RegisterHealthRoute reports the last dependency probe.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		if !status.Healthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": status})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm CareNest", "checks": status})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, users middleware.UserLoader, logger *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(logger))
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb, users)
	RegisterBookingRoutes(r, hb, users)
	RegisterHealthRoute(r)
}
