package controllers

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/models"
	"github.com/nestay/nestay_backend/repositories"
	"github.com/nestay/nestay_backend/utils"
	"github.com/nestay/nestay_backend/websocket"
)

// BookingController handles booking requests and host responses
type BookingController struct {
	db          *mongo.Client
	bookingRepo *repositories.BookingRepository
	hub         *websocket.Hub
}

// NewBookingController creates a new booking controller
func NewBookingController(db *mongo.Client, hub *websocket.Hub) *BookingController {
	return &BookingController{
		db:          db,
		bookingRepo: repositories.NewBookingRepository(db),
		hub:         hub,
	}
}

// nightsBetween counts the nights between two dates, minimum one
func nightsBetween(checkIn, checkOut time.Time) int {
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// CreateBooking creates a pending booking request for a listing
func (bc *BookingController) CreateBooking(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	guest, err := utils.GetUserFromToken(c, bc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	var req models.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	listingID, err := primitive.ObjectIDFromHex(req.ListingID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid listing ID",
		})
	}

	var listing models.Listing
	err = config.GetCollection(bc.db, "listings").FindOne(ctx, bson.M{"_id": listingID, "isActive": true}).Decode(&listing)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Listing not found or inactive",
		})
	}

	if listing.HostID == guest.ID {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "You cannot book your own listing",
		})
	}

	total := listing.PricePerNight
	if req.CheckIn != nil && req.CheckOut != nil {
		if !req.CheckOut.After(*req.CheckIn) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Check-out must be after check-in",
			})
		}

		overlap, err := bc.bookingRepo.HasOverlap(ctx, listingID, *req.CheckIn, *req.CheckOut)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to check availability",
			})
		}
		if overlap {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Listing is not available for the selected dates",
			})
		}

		total = listing.PricePerNight * float64(nightsBetween(*req.CheckIn, *req.CheckOut))
	} else if req.CheckIn != nil || req.CheckOut != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Both check-in and check-out are required for dated bookings",
		})
	}

	now := time.Now()
	booking := models.Booking{
		ID:        primitive.NewObjectID(),
		HostID:    listing.HostID,
		GuestID:   guest.ID,
		ListingID: listingID,
		Status:    models.BookingStatusPendingApproval,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Guests:    req.Guests,
		Total:     total,
		Details:   req.Details,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := config.GetCollection(bc.db, "bookings").InsertOne(ctx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create booking",
		})
	}

	// Notify the host over websocket and push; failures here do not fail the request
	if err := bc.hub.NotifyBookingRequest(listing.HostID, booking); err != nil {
		log.Printf("Failed to send websocket booking notification: %v", err)
	}
	go func() {
		title := "New booking request"
		body := fmt.Sprintf("%s requested %s", utils.DisplayName(*guest), listing.Title)
		if err := utils.SaveNotification(bc.db, listing.HostID, title, body, "new_booking", booking.ID.Hex()); err != nil {
			log.Printf("Failed to save booking notification: %v", err)
		}
		if err := utils.SendPushNotification(bc.db, listing.HostID, title, body, map[string]string{
			"type":      "new_booking",
			"bookingId": booking.ID.Hex(),
		}); err != nil {
			log.Printf("Failed to send booking push notification: %v", err)
		}
	}()

	return c.JSON(http.StatusCreated, models.BookingResponse{
		Status:  http.StatusCreated,
		Message: "Booking request submitted",
		Data:    &booking,
	})
}

// UpdateBookingStatus lets the host approve, decline or progress a booking
func (bc *BookingController) UpdateBookingStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, bc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid booking ID",
		})
	}

	var req models.BookingStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	bookingsCollection := config.GetCollection(bc.db, "bookings")

	var booking models.Booking
	err = bookingsCollection.FindOne(ctx, bson.M{"_id": bookingID, "hostId": host.ID}).Decode(&booking)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Booking not found",
		})
	}

	if !validStatusTransition(booking.Status, req.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Cannot move booking from %s to %s", booking.Status, req.Status),
		})
	}

	update := bson.M{"status": req.Status, "updatedAt": time.Now()}
	if req.HostResponse != "" {
		update["hostResponse"] = req.HostResponse
	}
	if _, err := bookingsCollection.UpdateOne(ctx, bson.M{"_id": bookingID}, bson.M{"$set": update}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update booking",
		})
	}

	booking.Status = req.Status
	booking.HostResponse = req.HostResponse

	if err := bc.hub.NotifyBookingResponse(booking.GuestID, booking); err != nil {
		log.Printf("Failed to send websocket booking update: %v", err)
	}
	go func() {
		title := "Booking update"
		body := fmt.Sprintf("Your booking is now %s", req.Status)
		if err := utils.SaveNotification(bc.db, booking.GuestID, title, body, "booking_update", booking.ID.Hex()); err != nil {
			log.Printf("Failed to save booking update notification: %v", err)
		}
		if err := utils.SendPushNotification(bc.db, booking.GuestID, title, body, map[string]string{
			"type":      "booking_update",
			"bookingId": booking.ID.Hex(),
			"status":    req.Status,
		}); err != nil {
			log.Printf("Failed to send booking update push: %v", err)
		}
	}()

	return c.JSON(http.StatusOK, models.BookingResponse{
		Status:  http.StatusOK,
		Message: "Booking updated successfully",
		Data:    &booking,
	})
}

// validStatusTransition enforces the booking lifecycle
func validStatusTransition(from, to string) bool {
	switch from {
	case models.BookingStatusPendingApproval:
		return to == models.BookingStatusConfirmed || to == models.BookingStatusCancelled
	case models.BookingStatusConfirmed:
		return to == models.BookingStatusActive || to == models.BookingStatusCompleted || to == models.BookingStatusCancelled
	case models.BookingStatusActive:
		return to == models.BookingStatusCompleted || to == models.BookingStatusCancelled
	default:
		return false
	}
}

// GetHostBookings returns all bookings for the authenticated host
func (bc *BookingController) GetHostBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host, err := utils.GetUserFromToken(c, bc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	bookings, err := bc.bookingRepo.FindByHost(ctx, host.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch bookings",
		})
	}

	return c.JSON(http.StatusOK, models.BookingsResponse{
		Status:  http.StatusOK,
		Message: "Bookings retrieved successfully",
		Data:    bookings,
	})
}

// GetGuestBookings returns all bookings made by the authenticated guest
func (bc *BookingController) GetGuestBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	guest, err := utils.GetUserFromToken(c, bc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	bookings, err := bc.bookingRepo.FindByGuest(ctx, guest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch bookings",
		})
	}

	return c.JSON(http.StatusOK, models.BookingsResponse{
		Status:  http.StatusOK,
		Message: "Bookings retrieved successfully",
		Data:    bookings,
	})
}
