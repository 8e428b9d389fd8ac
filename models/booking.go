// models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses
const (
	BookingStatusPendingApproval = "pending_approval"
	BookingStatusConfirmed       = "confirmed"
	BookingStatusActive          = "active"
	BookingStatusCompleted       = "completed"
	BookingStatusCancelled       = "cancelled"
)

// Booking model. CheckIn/CheckOut are nil for date-less service bookings
// (cleaning, experiences); Total falls back to the legacy totalAmount field
// on documents written by the old client.
type Booking struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	HostID        primitive.ObjectID `json:"hostId" bson:"hostId"`
	GuestID       primitive.ObjectID `json:"guestId" bson:"guestId"`
	ListingID     primitive.ObjectID `json:"listingId" bson:"listingId"`
	Status        string             `json:"status" bson:"status"`
	CheckIn       *time.Time         `json:"checkIn,omitempty" bson:"checkIn,omitempty"`
	CheckOut      *time.Time         `json:"checkOut,omitempty" bson:"checkOut,omitempty"`
	Guests        int                `json:"guests,omitempty" bson:"guests,omitempty"`
	Total         float64            `json:"total" bson:"total"`
	LegacyTotal   float64            `json:"-" bson:"totalAmount,omitempty"`
	Details       string             `json:"details,omitempty" bson:"details,omitempty"`
	HostResponse  string             `json:"hostResponse,omitempty" bson:"hostResponse,omitempty"`
	MediaURLs     []string           `json:"mediaUrls,omitempty" bson:"mediaUrls,omitempty"`
	ThumbnailURLs []string           `json:"thumbnailUrls,omitempty" bson:"thumbnailUrls,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Amount returns the booking total, honoring the legacy totalAmount field.
func (b Booking) Amount() float64 {
	if b.Total != 0 {
		return b.Total
	}
	return b.LegacyTotal
}

// BookingRequest model
type BookingRequest struct {
	ListingID string     `json:"listingId" validate:"required"`
	CheckIn   *time.Time `json:"checkIn,omitempty"`
	CheckOut  *time.Time `json:"checkOut,omitempty"`
	Guests    int        `json:"guests,omitempty"`
	Details   string     `json:"details,omitempty"`
}

// BookingStatusUpdateRequest model for host approval/decline
type BookingStatusUpdateRequest struct {
	Status       string `json:"status" validate:"required,oneof=confirmed cancelled active completed"`
	HostResponse string `json:"hostResponse,omitempty"`
}

// BookingResponse model
type BookingResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    *Booking `json:"data,omitempty"`
}

// BookingsResponse model for multiple bookings
type BookingsResponse struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Data    []Booking `json:"data,omitempty"`
}
