package routes

import (
	"carenest/handlers"
	"carenest/middleware"
	"carenest/models"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, users middleware.UserLoader) {
	h := hb.Booking
	bookingGroup := r.Group("/api/bookings")
	bookingGroup.Use(middleware.JWTAuthMiddleware(users))
	{
		bookingGroup.POST("", middleware.RequireRoles(models.RoleParent, models.RoleAdmin), h.CreateBookingHandler)
		bookingGroup.GET("", h.ListBookingsHandler)
		bookingGroup.GET("/:id", h.GetBookingHandler)
		bookingGroup.PUT("/:id/status", h.UpdateStatusHandler)
		bookingGroup.PUT("/:id/cancel", h.CancelBookingHandler)
		bookingGroup.PUT("/:id/rating", h.RateBookingHandler)
		bookingGroup.PUT("/:id/payment", h.RecordPaymentHandler)

		bookingGroup.POST("/:id/completion/otp", h.IssueCompletionOTPHandler)
		bookingGroup.POST("/:id/completion/otp/verify", h.VerifyCompletionOTPHandler)
		bookingGroup.POST("/:id/completion/complete", h.CompleteWithProofHandler)
		bookingGroup.POST("/:id/completion/qr", h.GenerateQRHandler)
		bookingGroup.POST("/completion/qr/redeem", h.RedeemQRHandler)
	}
}
