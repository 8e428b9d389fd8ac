package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/controllers"
	"github.com/nestay/nestay_backend/middleware"
	"github.com/nestay/nestay_backend/repositories"
	"github.com/nestay/nestay_backend/routes"
	"github.com/nestay/nestay_backend/services"
	"github.com/nestay/nestay_backend/utils"
	"github.com/nestay/nestay_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase
	config.InitFirebase()

	// Connect to Redis
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	nestayDB := client.Database(config.DBName())

	// Ensure upload directories exist
	if err := utils.InitializeStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Nestay Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize services
	paypalService := services.NewPayPalService(redisClient)
	cashoutService := services.NewCashoutService(nestayDB, paypalService, os.Getenv("PAYOUT_CURRENCY"))
	creditService := services.NewCreditService(nestayDB)

	// Initialize controllers
	authController := controllers.NewAuthController(client)
	userController := controllers.NewUserController(client)
	listingController := controllers.NewListingController(client)
	bookingController := controllers.NewBookingController(client, wsHub)
	earningsController := controllers.NewEarningsController(client)
	cashoutController := controllers.NewCashoutController(client, cashoutService, wsHub)
	creditController := controllers.NewCreditController(client, creditService, wsHub)
	messageController := controllers.NewMessageController(client, wsHub)

	// Register routes
	routes.SetupRoutes(e, client, authController, userController, listingController, messageController)
	routes.RegisterBookingRoutes(e, client, bookingController)
	routes.RegisterHostRoutes(e, client, listingController, earningsController, cashoutController, creditController)
	routes.RegisterAdminRoutes(e, client, creditController)

	// Expire booking requests the host never answered
	bookingRepo := repositories.NewBookingRepository(client)
	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			expired, err := bookingRepo.ExpireStalePending(ctx, time.Now())
			cancel()
			if err != nil {
				log.Printf("Failed to expire stale bookings: %v", err)
			} else if expired > 0 {
				log.Printf("Expired %d stale booking requests", expired)
			}
			time.Sleep(10 * time.Minute)
		}
	}()

	// Purge expired tokens from the blacklist
	go middleware.CleanupBlacklist()

	// Serve uploaded media
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
