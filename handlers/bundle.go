package handlers

import (
	"carenest/services/booking"
	"carenest/services/user"
)

// HandlerBundle groups the endpoint handlers.
type HandlerBundle struct {
	Auth    *AuthHandler
	User    *UserHandler
	Booking *BookingHandler
}

func NewHandlerBundle(userService user.UserService, bookingService booking.BookingService) *HandlerBundle {
	return &HandlerBundle{
		Auth:    NewAuthHandler(userService),
		User:    NewUserHandler(userService),
		Booking: NewBookingHandler(bookingService),
	}
}
