// models/earnings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EarningsSummary is a derived projection over a host's bookings, payouts
// and credits. It is recomputed from scratch on every fetch and never
// persisted; estimated earnings never contribute to the available balance.
type EarningsSummary struct {
	EstimatedEarnings  float64 `json:"estimatedEarnings"`
	TotalEarnings      float64 `json:"totalEarnings"`
	AdminFeesTotal     float64 `json:"adminFeesTotal"`
	ThisMonthEarnings  float64 `json:"thisMonthEarnings"`
	ThisMonthEstimated float64 `json:"thisMonthEstimated"`
	TotalCredits       float64 `json:"totalCredits"`
	TotalCashedOut     float64 `json:"totalCashedOut"`
	AvailableBalance   float64 `json:"availableBalance"`
	CompletedCount     int     `json:"completedCount"`
	UpcomingCount      int     `json:"upcomingCount"`
}

// Transaction record types
const (
	TransactionTypeBookingEarning = "booking_earning"
	TransactionTypePayout         = "payout"
	TransactionTypeCredit         = "credit"
)

// TransactionRecord is one row of the unified host transaction history.
// Amount is signed: earnings and credits are positive, payouts negative.
type TransactionRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	HostID      primitive.ObjectID `bson:"hostId" json:"hostId"`
	Type        string             `bson:"type" json:"type"`
	Amount      float64            `bson:"amount" json:"amount"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	BookingID   *primitive.ObjectID `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	BatchID     string             `bson:"batchId,omitempty" json:"batchId,omitempty"`
	Code        string             `bson:"code,omitempty" json:"code,omitempty"`
	Date        time.Time          `bson:"date" json:"date"`
}
