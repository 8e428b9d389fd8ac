package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nestay/nestay_backend/controllers"
	"github.com/nestay/nestay_backend/middleware"
)

// RegisterHostRoutes sets up the host-only earnings, cashout, credit and
// listing management routes
func RegisterHostRoutes(e *echo.Echo, db *mongo.Client, listingController *controllers.ListingController, earningsController *controllers.EarningsController, cashoutController *controllers.CashoutController, creditController *controllers.CreditController) {
	r := e.Group("/api/host")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireUserType("host"))

	// Listing management
	r.POST("/listings", listingController.CreateListing)
	r.GET("/listings", listingController.GetHostListings)
	r.DELETE("/listings/:id", listingController.DeactivateListing)

	// Earnings
	r.GET("/earnings", earningsController.GetEarningsSummary)
	r.GET("/earnings/transactions", earningsController.GetTransactionHistory)

	// Cashout
	r.POST("/cashout", cashoutController.RequestCashout)
	r.GET("/payouts", cashoutController.GetPayouts)
	r.POST("/payouts/:batchId/refresh", cashoutController.RefreshPayoutStatus)

	// Credit redemption
	r.POST("/credits/redeem", creditController.RedeemCredit)
}

// RegisterAdminRoutes sets up the admin-only credit code management routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client, creditController *controllers.CreditController) {
	r := e.Group("/api/admin")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireUserType("admin"))

	r.POST("/credit-codes", creditController.CreateCreditCode)
	r.GET("/credit-codes", creditController.ListCreditCodes)
	r.GET("/credit-codes/:code/qr", creditController.GetCreditCodeQR)
}
