package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nestay/nestay_backend/controllers"
	"github.com/nestay/nestay_backend/middleware"
)

// RegisterBookingRoutes sets up booking creation and lifecycle routes
func RegisterBookingRoutes(e *echo.Echo, db *mongo.Client, bookingController *controllers.BookingController) {
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	r.POST("/bookings", bookingController.CreateBooking)
	r.GET("/bookings/guest", bookingController.GetGuestBookings)
	r.GET("/bookings/host", bookingController.GetHostBookings)
	r.PUT("/bookings/:id/status", bookingController.UpdateBookingStatus)
}
