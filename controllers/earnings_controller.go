package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/models"
	"github.com/nestay/nestay_backend/repositories"
	"github.com/nestay/nestay_backend/services"
	"github.com/nestay/nestay_backend/utils"
)

// EarningsController serves the host earnings summary and transaction history
type EarningsController struct {
	db          *mongo.Client
	bookingRepo *repositories.BookingRepository
}

// NewEarningsController creates a new earnings controller
func NewEarningsController(db *mongo.Client) *EarningsController {
	return &EarningsController{
		db:          db,
		bookingRepo: repositories.NewBookingRepository(db),
	}
}

// loadHostLedger fetches everything the earnings math needs for one host
func loadHostLedger(ctx context.Context, db *mongo.Client, repo *repositories.BookingRepository, hostID primitive.ObjectID) ([]models.Booking, []models.Payout, []models.Credit, error) {
	bookings, err := repo.FindByHost(ctx, hostID)
	if err != nil {
		return nil, nil, nil, err
	}

	payoutsCursor, err := config.GetCollection(db, "payouts").Find(ctx,
		bson.M{"hostId": hostID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	defer payoutsCursor.Close(ctx)
	payouts := []models.Payout{}
	if err := payoutsCursor.All(ctx, &payouts); err != nil {
		return nil, nil, nil, err
	}

	creditsCursor, err := config.GetCollection(db, "credits").Find(ctx, bson.M{"hostId": hostID})
	if err != nil {
		return nil, nil, nil, err
	}
	defer creditsCursor.Close(ctx)
	credits := []models.Credit{}
	if err := creditsCursor.All(ctx, &credits); err != nil {
		return nil, nil, nil, err
	}

	return bookings, payouts, credits, nil
}

// GetEarningsSummary computes the host's earnings summary from their
// bookings, payouts and credits
func (ec *EarningsController) GetEarningsSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, ec.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	bookings, payouts, credits, err := loadHostLedger(ctx, ec.db, ec.bookingRepo, host.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load earnings data",
		})
	}

	summary, anomalies := services.Summarize(bookings, payouts, credits, time.Now(), services.DefaultFeeRate)
	for _, a := range anomalies {
		log.Printf("Earnings anomaly for host %s, booking %s: %s", host.ID.Hex(), a.BookingID, a.Reason)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Earnings summary retrieved successfully",
		Data:    summary,
	})
}

// GetTransactionHistory returns the unified earnings/payout/credit history,
// newest first
func (ec *EarningsController) GetTransactionHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, ec.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	bookings, payouts, credits, err := loadHostLedger(ctx, ec.db, ec.bookingRepo, host.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load transaction data",
		})
	}

	history := services.BuildTransactionHistory(bookings, payouts, credits, time.Now(), services.DefaultFeeRate)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transaction history retrieved successfully",
		Data:    history,
	})
}
