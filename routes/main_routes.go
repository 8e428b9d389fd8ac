package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nestay/nestay_backend/controllers"
	"github.com/nestay/nestay_backend/middleware"
)

// SetupRoutes registers the public auth endpoints and the protected
// profile, listing and messaging routes
func SetupRoutes(e *echo.Echo, db *mongo.Client, authController *controllers.AuthController, userController *controllers.UserController, listingController *controllers.ListingController, messageController *controllers.MessageController) {
	// Public auth routes
	auth := e.Group("/api/auth")
	auth.POST("/signup", authController.Signup)
	auth.POST("/login", authController.Login)
	auth.GET("/validate", authController.ValidateToken)

	// Public browsing routes
	e.GET("/api/listings", listingController.GetListings)
	e.GET("/api/listings/:id", listingController.GetListing)

	// Protected routes group
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	r.POST("/auth/logout", authController.Logout)

	// Profile routes
	r.GET("/users/profile", userController.GetProfile)
	r.PUT("/users/profile", userController.UpdateProfile)
	r.POST("/users/profile-photo", userController.UploadProfilePhoto)
	r.PUT("/users/fcm-token", userController.UpdateFCMToken)
	r.GET("/users/notifications", userController.GetNotifications)
	r.PUT("/users/notifications/:id/read", userController.MarkNotificationRead)

	// Messaging routes
	r.GET("/conversations", messageController.GetConversations)
	r.GET("/conversations/:userId", messageController.GetConversation)
	r.POST("/messages", messageController.SendMessage)
	r.GET("/ws", messageController.HandleWebSocket)
}
