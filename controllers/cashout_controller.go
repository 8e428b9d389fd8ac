package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/models"
	"github.com/nestay/nestay_backend/repositories"
	"github.com/nestay/nestay_backend/services"
	"github.com/nestay/nestay_backend/utils"
	"github.com/nestay/nestay_backend/websocket"
)

// CashoutController handles host cashout submissions and payout history
type CashoutController struct {
	db          *mongo.Client
	cashoutSvc  *services.CashoutService
	bookingRepo *repositories.BookingRepository
	hub         *websocket.Hub
}

// NewCashoutController creates a new cashout controller
func NewCashoutController(db *mongo.Client, cashoutSvc *services.CashoutService, hub *websocket.Hub) *CashoutController {
	return &CashoutController{
		db:          db,
		cashoutSvc:  cashoutSvc,
		bookingRepo: repositories.NewBookingRepository(db),
		hub:         hub,
	}
}

// RequestCashout validates, issues and records a cashout for the host
func (cc *CashoutController) RequestCashout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, cc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	var req models.CashoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Email == "" {
		req.Email = host.PayoutEmail
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	// The balance is recomputed from the ledger on every submission
	bookings, payouts, credits, err := loadHostLedger(ctx, cc.db, cc.bookingRepo, host.ID)
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

	payout, err := cc.cashoutSvc.Submit(ctx, *host, req, summary.AvailableBalance)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: vErr.Message,
			})
		case errors.Is(err, services.ErrInsufficientBalance):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Requested amount exceeds available balance",
				Data:    map[string]float64{"availableBalance": summary.AvailableBalance},
			})
		case errors.Is(err, services.ErrCashoutInFlight):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "A cashout is already being processed for this account",
			})
		case errors.Is(err, services.ErrProviderAuth), errors.Is(err, services.ErrProviderPayout):
			return c.JSON(http.StatusBadGateway, models.Response{
				Status:  http.StatusBadGateway,
				Message: "Payment provider rejected the payout, no funds were moved",
			})
		default:
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to process cashout",
			})
		}
	}

	// Recompute so the response reflects the new balance
	payouts = append(payouts, *payout)
	updated, _ := services.Summarize(bookings, payouts, credits, time.Now(), services.DefaultFeeRate)

	if err := cc.hub.NotifyPayoutRecorded(host.ID, payout); err != nil {
		log.Printf("Failed to send websocket payout notification: %v", err)
	}
	go func(h models.User, p models.Payout) {
		if err := utils.SendCashoutReceiptEmail(p.Email, utils.DisplayName(h), p.Amount, p.Currency, p.BatchID); err != nil {
			log.Printf("Failed to send cashout receipt email: %v", err)
		}
		if err := utils.SaveNotification(cc.db, h.ID, "Cashout submitted",
			"Your cashout was accepted by the payment provider", "payout", p.BatchID); err != nil {
			log.Printf("Failed to save cashout notification: %v", err)
		}
		if err := utils.SendPushNotification(cc.db, h.ID, "Cashout submitted",
			"Your cashout was accepted by the payment provider", map[string]string{
				"type":    "payout",
				"batchId": p.BatchID,
			}); err != nil {
			log.Printf("Failed to send cashout push notification: %v", err)
		}
	}(*host, *payout)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Cashout submitted successfully",
		Data: models.CashoutResult{
			Payout:  payout,
			Summary: &updated,
		},
	})
}

// GetPayouts returns the host's payout history, newest first
func (cc *CashoutController) GetPayouts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, cc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	cursor, err := config.GetCollection(cc.db, "payouts").Find(ctx,
		bson.M{"hostId": host.ID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch payouts",
		})
	}
	defer cursor.Close(ctx)

	payouts := []models.Payout{}
	if err := cursor.All(ctx, &payouts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode payouts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payouts retrieved successfully",
		Data:    payouts,
	})
}

// RefreshPayoutStatus re-queries the provider for a provisional payout and
// updates the ledger status if it settled
func (cc *CashoutController) RefreshPayoutStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, cc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	batchID := c.Param("batchId")
	if batchID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Batch ID is required",
		})
	}

	payoutsCollection := config.GetCollection(cc.db, "payouts")
	var payout models.Payout
	err = payoutsCollection.FindOne(ctx, bson.M{"batchId": batchID, "hostId": host.ID}).Decode(&payout)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Payout not found",
		})
	}

	status, err := cc.cashoutSvc.RefreshStatus(ctx, &payout)
	if err != nil {
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Failed to query payout status at the provider",
		})
	}

	if status != payout.Status {
		now := time.Now()
		_, err = payoutsCollection.UpdateOne(ctx,
			bson.M{"_id": payout.ID},
			bson.M{"$set": bson.M{"status": status, "processedAt": now}},
		)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update payout status",
			})
		}
		payout.Status = status
		payout.ProcessedAt = &now
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout status refreshed",
		Data:    payout,
	})
}
