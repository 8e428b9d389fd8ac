package controllers

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"image/png"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/models"
	"github.com/nestay/nestay_backend/services"
	"github.com/nestay/nestay_backend/utils"
	"github.com/nestay/nestay_backend/websocket"
)

// Characters used for generated credit codes. Ambiguous characters (0/O,
// 1/I/L) are excluded.
const creditCodeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const creditCodeLength = 8

// CreditController handles credit code creation and redemption
type CreditController struct {
	db        *mongo.Client
	creditSvc *services.CreditService
	hub       *websocket.Hub
}

// NewCreditController creates a new credit controller
func NewCreditController(db *mongo.Client, creditSvc *services.CreditService, hub *websocket.Hub) *CreditController {
	return &CreditController{db: db, creditSvc: creditSvc, hub: hub}
}

// generateCreditCode returns a random 8-character code
func generateCreditCode() (string, error) {
	code := make([]byte, creditCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(creditCodeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = creditCodeCharset[n.Int64()]
	}
	return string(code), nil
}

// RedeemCredit redeems a credit code for the authenticated host
func (cc *CreditController) RedeemCredit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, cc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	var req models.RedeemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Credit code is required",
		})
	}

	result, err := cc.creditSvc.Redeem(ctx, req.Code, host.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCreditNotFound):
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Credit code not found",
			})
		case errors.Is(err, services.ErrCreditAlreadyRedeemed):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Credit code has already been redeemed",
			})
		case errors.Is(err, services.ErrCreditInactive):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Credit code is not active",
			})
		default:
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to redeem credit code",
			})
		}
	}

	if err := cc.hub.SendToUser(host.ID, websocket.Notification{
		Type:    websocket.EventTypeCreditGranted,
		Message: "Credit granted",
		Data:    result,
	}); err != nil {
		log.Printf("Failed to deliver credit notification: %v", err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Credit redeemed successfully",
		Data:    result,
	})
}

// CreateCreditCode creates a new credit code. Admin only.
func (cc *CreditController) CreateCreditCode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var req struct {
		CreditValue float64 `json:"creditValue,omitempty"`
		Count       int     `json:"count,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > 100 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Cannot create more than 100 codes at once",
		})
	}

	codesCollection := config.GetCollection(cc.db, "creditCodes")
	created := []models.CreditCode{}
	for i := 0; i < req.Count; i++ {
		code, err := generateCreditCode()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to generate code",
			})
		}

		doc := models.CreditCode{
			ID:          primitive.NewObjectID(),
			Code:        code,
			CreditValue: req.CreditValue,
			Status:      models.CreditCodeStatusActive,
			Redeemed:    false,
			CreatedAt:   time.Now(),
		}
		// Retry once on a duplicate code collision
		if _, err := codesCollection.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				i--
				continue
			}
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create credit code",
			})
		}
		created = append(created, doc)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Credit codes created successfully",
		Data:    created,
	})
}

// GetCreditCodeQR returns a QR code image for a credit code as a base64
// PNG data URL. Admin only.
func (cc *CreditController) GetCreditCodeQR(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Credit code is required",
		})
	}

	var creditCode models.CreditCode
	err := config.GetCollection(cc.db, "creditCodes").FindOne(ctx, bson.M{"code": code}).Decode(&creditCode)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Credit code not found",
		})
	}

	qrCode, err := qr.Encode(creditCode.Code, qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale QR code",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code",
		})
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QR code generated successfully",
		Data: map[string]string{
			"code":   creditCode.Code,
			"qrCode": dataURL,
		},
	})
}

// ListCreditCodes lists credit codes with optional status filter. Admin only.
func (cc *CreditController) ListCreditCodes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	switch c.QueryParam("state") {
	case "redeemed":
		filter["redeemed"] = true
	case "available":
		filter["redeemed"] = false
		filter["status"] = models.CreditCodeStatusActive
	}

	cursor, err := config.GetCollection(cc.db, "creditCodes").Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(200),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch credit codes",
		})
	}
	defer cursor.Close(ctx)

	codes := []models.CreditCode{}
	if err := cursor.All(ctx, &codes); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode credit codes",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Credit codes retrieved successfully",
		Data:    codes,
	})
}
